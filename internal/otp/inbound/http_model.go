package inbound

import "net/http"

type RequestCodeRequest struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

type RequestCodeResponse struct{}

func (RequestCodeResponse) Message() string {
	return "code sent"
}

func (RequestCodeResponse) StatusCode() int {
	return http.StatusAccepted
}

type ConfirmCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ConfirmCodeResponse struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

func (ConfirmCodeResponse) Message() string {
	return "code verified"
}

type AdmissionResponse struct {
	Admitted bool   `json:"admitted"`
	Block    string `json:"block,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type KeyStatusResponse struct {
	Present    bool  `json:"present"`
	TTLSeconds int64 `json:"ttl_seconds"`
}

type InspectIdentityResponse struct {
	Email        string                       `json:"email"`
	State        string                       `json:"state"`
	Attempts     int64                        `json:"attempts"`
	RequestCount int64                        `json:"request_count"`
	Keys         map[string]KeyStatusResponse `json:"keys"`
}

type ResetIdentityResponse struct{}

func (ResetIdentityResponse) Message() string {
	return "identity reset"
}

func (ResetIdentityResponse) StatusCode() int {
	return http.StatusNoContent
}
