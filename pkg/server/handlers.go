package server

import (
	"errors"
	"net/http"
	"time"

	"mealshare/trustcore/pkg/location"
	"mealshare/trustcore/pkg/safety"
	"mealshare/trustcore/pkg/telemetry/tracing"
)

// ValidateRequest is the body of POST /v1/content/validate.
type ValidateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CheckRequest is the body of POST /v1/content/check.
type CheckRequest struct {
	Text string `json:"text"`
}

// ContentResponse reports the outcome of a content check. ViolatingTerm is
// only set when safety.expose_terms is enabled.
type ContentResponse struct {
	Valid         bool   `json:"valid"`
	Category      string `json:"category,omitempty"`
	ViolatingTerm string `json:"violating_term,omitempty"`
}

// PublicLocationRequest is the body of POST /v1/location/public. Either Key
// or Address (with OwnerID) identifies the location.
type PublicLocationRequest struct {
	Key     string   `json:"key,omitempty"`
	Address string   `json:"address,omitempty"`
	OwnerID string   `json:"owner_id,omitempty"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// PublicLocationResponse is the point shown to other users.
type PublicLocationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	ts := s.store.TermSet()
	res := safety.NewFilter(ts).Validate(req.Title, req.Description)
	s.writeContentResult(w, r, "validate", ts, res.Valid, res.Category, res.ViolatingTerm,
		len(req.Title)+len(req.Description), time.Since(start))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	ts := s.store.TermSet()
	res := safety.NewFilter(ts).Check(req.Text)
	s.writeContentResult(w, r, "check", ts, res.Clean(), res.Category, res.Term,
		len(req.Text), time.Since(start))
}

// writeContentResult records a content check and writes 200 for clean
// content or 422 for a violation.
func (s *Server) writeContentResult(w http.ResponseWriter, r *http.Request, operation string, ts *safety.TermSet,
	valid bool, category, term string, textLength int, elapsed time.Duration) {
	ctx := r.Context()
	violation := !valid

	span := tracing.SpanFromContext(ctx)
	tracing.SetContentAttributes(span, operation, violation, category, textLength)
	if ts != nil {
		tracing.SetTermSetAttributes(span, string(ts.Matcher()), ts.Len(), s.store.Version())
	}
	s.collector.RecordContentCheck(operation, violation, category, elapsed)

	resp := ContentResponse{Valid: valid}
	code := http.StatusOK
	if violation {
		code = http.StatusUnprocessableEntity
		resp.Category = category
		if s.config.Safety.ExposeTerms {
			resp.ViolatingTerm = term
		}
		s.logger.InfoContext(ctx, "content rejected",
			"operation", operation,
			"category", category,
		)
	}
	writeJSON(w, code, resp)
}

func (s *Server) handlePublicLocation(w http.ResponseWriter, r *http.Request) {
	var req PublicLocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	span := tracing.SpanFromContext(ctx)
	start := time.Now()

	fail := func(err error) {
		var field string
		var argErr *location.ArgumentError
		if errors.As(err, &argErr) {
			field = argErr.Field
		}
		tracing.SetArgumentError(span, field)
		tracing.SetLocationAttributes(span, "invalid_argument")
		s.collector.RecordLocationOffset("invalid_argument", time.Since(start))
		s.logger.WarnContext(ctx, "public location rejected", "field", field)
		writeArgumentError(w, err)
	}

	if req.Lat == nil {
		fail(&location.ArgumentError{Field: "lat", Message: "is required"})
		return
	}
	if req.Lng == nil {
		fail(&location.ArgumentError{Field: "lng", Message: "is required"})
		return
	}

	key := req.Key
	if key == "" && (req.Address != "" || req.OwnerID != "") {
		var err error
		if key, err = location.Key(req.Address, req.OwnerID); err != nil {
			fail(err)
			return
		}
	}

	public, err := s.obfuscator.Public(key, location.Point{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		fail(err)
		return
	}

	tracing.SetLocationAttributes(span, "success")
	s.collector.RecordLocationOffset("success", time.Since(start))
	s.logger.DebugContext(ctx, "public location computed")

	writeJSON(w, http.StatusOK, PublicLocationResponse{Lat: public.Lat, Lng: public.Lng})
}
