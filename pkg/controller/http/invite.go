package http

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doorbell-dev/doorbell/pkg/domain/model"
	"github.com/doorbell-dev/doorbell/pkg/domain/types"
	"github.com/doorbell-dev/doorbell/pkg/utils/errutil"
	"github.com/doorbell-dev/doorbell/pkg/utils/safe"
)

// inviteHandler validates and forwards one invite request. The outcome
// taxonomy maps onto HTTP statuses: accepted is 200, already-a-member is
// a 303 redirect to the sign-in page, transport failures are 502 and
// everything else is 400 with the rejection reason.
func (s *Server) inviteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	type requestBody struct {
		Channel      string `json:"channel"`
		Email        string `json:"email"`
		CoC          int    `json:"coc"`
		CaptchaToken string `json:"g-recaptcha-response"`
	}

	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to decode invite request"), http.StatusBadRequest)
		return
	}

	req := model.InviteRequest{
		ChannelName:   body.Channel,
		Email:         body.Email,
		ConsentGiven:  body.CoC == 1,
		CaptchaToken:  body.CaptchaToken,
		ClientAddress: clientAddress(r),
	}

	outcome := s.inviteUC.Submit(ctx, req)

	type responseBody struct {
		Msg         string `json:"msg"`
		RedirectURL string `json:"redirectUrl,omitempty"`
	}
	resp := responseBody{
		Msg:         outcome.Message,
		RedirectURL: fmt.Sprintf("https://%s.slack.com/", s.workspace),
	}

	status := http.StatusBadRequest
	switch {
	case outcome.Kind == types.OutcomeAccepted:
		status = http.StatusOK
	case outcome.Redirect():
		status = http.StatusSeeOther
	case outcome.Kind == types.OutcomeTransportError:
		status = http.StatusBadGateway
	}

	data, err := json.Marshal(resp)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal invite response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

// clientAddress strips the port from the peer address; the captcha
// verifier wants a bare IP
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
