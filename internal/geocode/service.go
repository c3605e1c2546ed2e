package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"greenbin_backend/platform/apperr"
	"greenbin_backend/platform/config"
	"greenbin_backend/platform/logger"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// minQueryLength is the trimmed length below which no request is issued.
	minQueryLength = 2
	// minImportance filters out low-relevance provider results on the search path.
	minImportance = 0.1
	// maxSuggestions caps the returned suggestion list.
	maxSuggestions = 8
	// cacheCapacity bounds the query cache, evicted oldest-first.
	cacheCapacity = 50
)

// addressTypes are the result types considered address-like.
var addressTypes = map[string]bool{
	"house":       true,
	"building":    true,
	"residential": true,
	"commercial":  true,
	"industrial":  true,
}

// addressClasses are the result classes accepted when the type is not address-like.
var addressClasses = map[string]bool{
	"place":    true,
	"highway":  true,
	"building": true,
	"amenity":  true,
	"landuse":  true,
}

// Service queries the Nominatim geocoding provider and normalizes its results.
type Service struct {
	client  *http.Client
	cfg     config.GeocodeConfig
	log     *logger.Logger
	limiter *rate.Limiter
	group   singleflight.Group
	cache   *queryCache
}

// NewService creates a geocoding service. The rate limiter keeps the service
// within the provider's one-request-per-second usage policy.
func NewService(cfg config.GeocodeConfig, log *logger.Logger) *Service {
	return &Service{
		client:  &http.Client{Timeout: 5 * time.Second},
		cfg:     cfg,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(1), 2),
		cache:   newQueryCache(cacheCapacity),
	}
}

// Search resolves free-text input to ranked address suggestions.
// Queries shorter than two characters return an empty list without issuing
// a request. Upstream failures map to an upstream error; callers degrade to
// an empty suggestion list.
func (s *Service) Search(ctx context.Context, query string) ([]AddressSuggestion, error) {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < minQueryLength {
		return []AddressSuggestion{}, nil
	}

	if cached, ok := s.cache.get(trimmed); ok {
		return cached, nil
	}

	// Coalesce concurrent identical queries into one upstream request.
	result, err, _ := s.group.Do(trimmed, func() (interface{}, error) {
		return s.searchUpstream(ctx, trimmed)
	})
	if err != nil {
		return nil, err
	}

	suggestions := result.([]AddressSuggestion)
	s.cache.put(trimmed, suggestions)
	return suggestions, nil
}

func (s *Service) searchUpstream(ctx context.Context, query string) ([]AddressSuggestion, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("limit", strconv.Itoa(s.cfg.GetGeocodeResultLimit()))
	params.Add("countrycodes", s.cfg.GetGeocodeCountryCode())

	var rawResults []nominatimResult
	if err := s.doRequest(ctx, "/search", params, &rawResults); err != nil {
		s.log.GeocodeUpstreamError("search", query, err)
		return nil, err
	}

	suggestions := make([]AddressSuggestion, 0, len(rawResults))
	for _, raw := range rawResults {
		if !isAddressLike(raw) || raw.Importance < minImportance {
			continue
		}
		suggestion, ok := buildSuggestion(raw)
		if !ok {
			continue
		}
		suggestion.Score = scoreSuggestion(suggestion, raw, query)
		suggestions = append(suggestions, suggestion)
	}

	// Stable sort keeps provider order for equal scores.
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	return suggestions, nil
}

// Reverse resolves a coordinate to a formatted address suggestion.
// It never fails the caller: on any upstream error the suggestion carries a
// "lat, lng" label rounded to six decimal places.
func (s *Service) Reverse(ctx context.Context, coord Coordinate) AddressSuggestion {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(coord.Lng, 'f', -1, 64))
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("zoom", "18")

	var raw nominatimResult
	if err := s.doRequest(ctx, "/reverse", params, &raw); err != nil {
		s.log.GeocodeUpstreamError("reverse", fmt.Sprintf("%f,%f", coord.Lat, coord.Lng), err)
		return fallbackSuggestion(coord)
	}

	suggestion, ok := buildSuggestion(raw)
	if !ok {
		return fallbackSuggestion(coord)
	}
	suggestion.Coordinate = coord
	return suggestion
}

func (s *Service) doRequest(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "geocoding request canceled", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", s.cfg.GetNominatimBaseURL(), path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to build geocoding request", err)
	}

	req.Header.Set("User-Agent", s.cfg.GetNominatimUserAgent())

	resp, err := s.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "geocoding provider unreachable", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return apperr.Upstream(fmt.Sprintf("geocoding provider returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to decode geocoding payload", err)
	}

	return nil
}

func isAddressLike(raw nominatimResult) bool {
	return addressTypes[raw.Type] || addressClasses[raw.Class]
}

func buildSuggestion(raw nominatimResult) (AddressSuggestion, bool) {
	lat, latErr := strconv.ParseFloat(raw.Lat, 64)
	lon, lonErr := strconv.ParseFloat(raw.Lon, 64)
	if latErr != nil || lonErr != nil {
		return AddressSuggestion{}, false
	}

	city := pickCity(raw.Address)

	suggestion := AddressSuggestion{
		Street:      raw.Address.Road,
		HouseNumber: raw.Address.HouseNumber,
		ZipCode:     raw.Address.Postcode,
		City:        city,
		Coordinate:  Coordinate{Lat: lat, Lng: lon},
	}

	suggestion.PrimaryLine = buildPrimaryLine(suggestion, raw.DisplayName)
	if suggestion.PrimaryLine == "" {
		return AddressSuggestion{}, false
	}
	suggestion.SecondaryLine = buildSecondaryLine(suggestion)

	return suggestion, true
}

// buildPrimaryLine prefers street plus house number, then street alone,
// then the first comma segment of the provider display string.
func buildPrimaryLine(suggestion AddressSuggestion, displayName string) string {
	if suggestion.Street != "" {
		if suggestion.HouseNumber != "" {
			return suggestion.Street + " " + suggestion.HouseNumber
		}
		return suggestion.Street
	}

	if segment, _, found := strings.Cut(displayName, ","); found {
		return strings.TrimSpace(segment)
	}
	return strings.TrimSpace(displayName)
}

// buildSecondaryLine is postcode plus city when both are present, city alone
// otherwise, empty when neither is known.
func buildSecondaryLine(suggestion AddressSuggestion) string {
	if suggestion.ZipCode != "" && suggestion.City != "" {
		return suggestion.ZipCode + " " + suggestion.City
	}
	return suggestion.City
}

func pickCity(address nominatimAddress) string {
	if address.City != "" {
		return address.City
	}
	if address.Town != "" {
		return address.Town
	}
	if address.Village != "" {
		return address.Village
	}
	if address.Municipality != "" {
		return address.Municipality
	}
	return address.Hamlet
}

// scoreSuggestion ranks suggestions: exact substring matches on the primary
// line weigh most, house numbers and prefix matches add smaller boosts, and
// the provider importance value breaks remaining ties.
func scoreSuggestion(suggestion AddressSuggestion, raw nominatimResult, query string) float64 {
	score := raw.Importance
	loweredPrimary := strings.ToLower(suggestion.PrimaryLine)
	loweredQuery := strings.ToLower(strings.TrimSpace(query))

	if strings.Contains(loweredPrimary, loweredQuery) {
		score += 10
	}
	if suggestion.HouseNumber != "" {
		score += 5
	}
	if strings.HasPrefix(loweredPrimary, loweredQuery) {
		score += 3
	}

	return score
}

func fallbackSuggestion(coord Coordinate) AddressSuggestion {
	return AddressSuggestion{
		PrimaryLine: fmt.Sprintf("%.6f, %.6f", coord.Lat, coord.Lng),
		Coordinate:  coord,
	}
}
