package controllers

import (
	"net/http"

	"github.com/guvvyapp/guvvy-backend/api/middleware"
	"github.com/guvvyapp/guvvy-backend/api/responses"
	"github.com/guvvyapp/guvvy-backend/internal/users"
)

// Session reports who the caller is, if anyone. It sits behind OptionalUser,
// so anonymous requests still get a 200 with authenticated=false.
func Session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"authenticated": false}
		if user := middleware.CurrentUser(r.Context()); user != nil {
			payload["authenticated"] = true
			payload["user"] = users.FromModel(user)
		}
		responses.WriteSuccess(w, payload)
	}
}
