package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doorbell-dev/doorbell/pkg/utils/errutil"
	"github.com/doorbell-dev/doorbell/pkg/utils/safe"
)

// dataHandler serves the roster snapshot and organization profile. A
// profile without a name is treated as not found: the org-info fetch has
// not produced displayable data yet.
func (s *Server) dataHandler(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Name      string   `json:"name"`
		Workspace string   `json:"workspace"`
		Logo      string   `json:"logo,omitempty"`
		Active    int      `json:"active"`
		Total     int      `json:"total"`
		Channels  []string `json:"channels,omitempty"`
		CoC       string   `json:"coc,omitempty"`
		SiteKey   string   `json:"recaptcha_sitekey,omitempty"`
	}

	profile := s.sync.Profile()
	if profile.Name == "" {
		http.NotFound(w, r)
		return
	}

	snapshot := s.sync.Snapshot()
	resp := response{
		Name:      profile.Name,
		Workspace: s.workspace,
		Logo:      profile.LogoURL,
		Active:    snapshot.Active,
		Total:     snapshot.Total,
		Channels:  s.inviteUC.Channels(),
		CoC:       s.cocURL,
		SiteKey:   s.siteKey,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal data response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, data)
}
