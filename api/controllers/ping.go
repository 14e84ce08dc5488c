package controllers

import (
	"net/http"

	"github.com/aromabay/aromabay-backend/api/middleware"
	"github.com/aromabay/aromabay-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if login := middleware.LoginFromContext(r.Context()); login != "" {
			payload["login"] = login
		}
		responses.WriteSuccess(w, payload)
	}
}

func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "admin", "status": "ok"}
		if login := middleware.LoginFromContext(r.Context()); login != "" {
			payload["login"] = login
		}
		responses.WriteSuccess(w, payload)
	}
}
