package server

import (
	"net/http"

	"github.com/jrsteele09/go-oidc-portal/users"
	"github.com/rs/zerolog/log"
)

// PageData is the template model shared by the pages
type PageData struct {
	AppName string
	User    *users.UserProfile
}

// IndexHandler renders the home page, with the identity when there is one
func (s *Server) IndexHandler() http.HandlerFunc {
	return s.pageHandler("index.html")
}

// AccountHandler renders the signed-in user's account page
func (s *Server) AccountHandler() http.HandlerFunc {
	return s.pageHandler("account.html")
}

func (s *Server) pageHandler(name string) http.HandlerFunc {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{
			AppName: s.config.GetAppName(),
			User:    UserFromContext(r.Context()),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		w.Header().Set("Cache-Control", "no-store")
		if err := tmpl.Execute(w, data); err != nil {
			log.Ctx(r.Context()).Err(err).Str("template", name).Msg("Failed to render template")
		}
	}
}
