package handlers

import (
	"ssipfix/internal/config"
	"ssipfix/internal/service"

	"github.com/go-playground/validator/v10"
)

type Handlers struct {
	AuthService     service.AuthService
	UserService     service.UserService
	ReactionService service.ReactionService
	MediaService    service.MediaService
	PostService     service.PostService
	NoteService     service.NoteService
	TablesService   service.TablesService
	Cfg             *config.Config
	Validate        *validator.Validate
}

func NewHandlers(service *service.Service, config *config.Config) *Handlers {
	return &Handlers{
		AuthService:     service.Auth,
		UserService:     service.User,
		ReactionService: service.Reaction,
		MediaService:    service.Media,
		PostService:     service.Post,
		NoteService:     service.Note,
		TablesService:   service.Tables,
		Cfg:             config,
		Validate:        validator.New(),
	}
}
