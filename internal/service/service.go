package service

import (
	"ssipfix/internal/config"
	"ssipfix/internal/repository"
	"ssipfix/internal/storage"
)

type Service struct {
	Auth     AuthService
	Tokens   TokenService
	User     UserService
	Reaction ReactionService
	Media    MediaService
	Post     PostService
	Note     NoteService
	Tables   TablesService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, pings map[string]PingFunc) *Service {
	tokens := NewTokenService(rep.Tokens, cfg.Session.RememberTTL)
	reactions := NewReactionService(rep.Reactions)
	media := NewMediaService(storage)

	return &Service{
		Auth:     NewAuthService(rep.Users, rep.Sessions, tokens, cfg.Session.TTL),
		Tokens:   tokens,
		User:     NewUserService(rep.Users, rep.Sessions, tokens),
		Reaction: reactions,
		Media:    media,
		Post:     NewPostService(rep.Posts, rep.Comments, media, reactions),
		Note:     NewNoteService(rep.Notes),
		Tables:   NewTablesService(rep.Tables, pings),
	}
}
