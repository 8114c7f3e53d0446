package response

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status  string      `json:"status"`
	Error   string      `json:"error,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(data)
}

func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errorMessages string
	for _, err := range errs {
		errorMessages += err.Field() + ": " + err.Tag() + "; "
	}

	return Response{
		Status: StatusError,
		Error:  errorMessages,
	}
}

// FieldErrors wraps per-field validation messages.
func FieldErrors(errs map[string]string) Response {
	return Response{
		Status: StatusError,
		Error:  "validation failed",
		Errors: errs,
	}
}

func RequestOK(message string, data interface{}) Response {
	return Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}

// IsAJAX reports whether the request came through the browser-side AJAX
// layer, which cannot distinguish a redirect from a normal response.
func IsAJAX(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// Redirect issues a 302 to target. For AJAX requests a from_ajax marker is
// appended to the target's query string.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsAJAX(r) {
		if u, err := url.Parse(target); err == nil {
			q := u.Query()
			q.Set("from_ajax", "true")
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}
