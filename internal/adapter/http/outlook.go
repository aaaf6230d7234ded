package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/storm-outlook-service/internal/domain"
)

var errBadRequest = errors.New("bad request")

// handleOutlook serves GET /outlook?lat=&lon= or ?place=&state=, with optional
// extended, discussions, and format=text parameters.
func (s *Server) handleOutlook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts, err := parseOptions(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, status, err := s.locate(r, q)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	out, err := s.deps.Outlooks.GetOutlook(r.Context(), p, opts)
	if err != nil {
		var feedErr *domain.FeedError
		if errors.As(err, &feedErr) {
			s.logger.Warn("outlook feed failure", "layer", feedErr.Layer, "error", err, "request_id", RequestIDFromContext(r.Context()))
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		s.logger.Error("outlook evaluation failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if q.Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, out.Summary()) //nolint:errcheck // best-effort response
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// locate resolves the query point. It returns the status to use on failure.
func (s *Server) locate(r *http.Request, q url.Values) (domain.GeoPoint, int, error) {
	latStr, lonStr, place := q.Get("lat"), q.Get("lon"), q.Get("place")

	switch {
	case latStr != "" || lonStr != "":
		if latStr == "" || lonStr == "" {
			return domain.GeoPoint{}, http.StatusBadRequest, fmt.Errorf("%w: lat and lon must be given together", errBadRequest)
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return domain.GeoPoint{}, http.StatusBadRequest, fmt.Errorf("%w: invalid lat %q", errBadRequest, latStr)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return domain.GeoPoint{}, http.StatusBadRequest, fmt.Errorf("%w: invalid lon %q", errBadRequest, lonStr)
		}
		p, err := domain.NewGeoPoint(lat, lon)
		if err != nil {
			return domain.GeoPoint{}, http.StatusBadRequest, err
		}
		return p, http.StatusOK, nil

	case place != "":
		if s.deps.Geocoder == nil {
			return domain.GeoPoint{}, http.StatusBadRequest, fmt.Errorf("%w: place lookup is disabled, use lat and lon", errBadRequest)
		}
		site := domain.Site{Name: place, Place: place, State: q.Get("state")}
		p, err := domain.LocateSite(r.Context(), site, s.deps.Geocoder)
		switch {
		case errors.Is(err, domain.ErrSiteUnresolved):
			return domain.GeoPoint{}, http.StatusNotFound, err
		case err != nil:
			return domain.GeoPoint{}, http.StatusBadGateway, err
		}
		return p, http.StatusOK, nil

	default:
		return domain.GeoPoint{}, http.StatusBadRequest, fmt.Errorf("%w: lat and lon or place is required", errBadRequest)
	}
}

func parseOptions(q url.Values) (domain.Options, error) {
	extended, err := boolParam(q, "extended", false)
	if err != nil {
		return domain.Options{}, err
	}
	discussions, err := boolParam(q, "discussions", true)
	if err != nil {
		return domain.Options{}, err
	}
	return domain.Options{Extended: extended, Discussions: discussions}, nil
}

func boolParam(q url.Values, key string, fallback bool) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: invalid %s %q", errBadRequest, key, v)
	}
	return b, nil
}
