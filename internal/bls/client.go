package bls

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pders01/menu-inflation/internal/config"
	"github.com/pders01/menu-inflation/internal/models"
)

// maxYearsPerRequest is the BLS v2 limit for registered users.
const maxYearsPerRequest = 20

var (
	// ErrRequestFailed is returned when the API cannot be reached or rejects the request.
	ErrRequestFailed = errors.New("BLS API request failed")
	// ErrEmptySeries is returned when the API answers without any monthly data.
	ErrEmptySeries = errors.New("BLS returned no monthly data")
)

// APIError is a response whose status is not REQUEST_SUCCEEDED.
type APIError struct {
	Status   string
	Messages []string
}

func (e *APIError) Error() string {
	msg := "Unknown error."
	if len(e.Messages) > 0 {
		msg = e.Messages[0]
	}
	return fmt.Sprintf("BLS API request failed (%s): %s", e.Status, msg)
}

func (e *APIError) Unwrap() error {
	return ErrRequestFailed
}

// Client fetches CPI series from the BLS public data API v2.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewClient creates a client from cfg.
func NewClient(cfg config.BLSConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultBLSEndpoint
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type request struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type response struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []struct {
			SeriesID string `json:"seriesID"`
			Data     []struct {
				Year       string `json:"year"`
				Period     string `json:"period"`
				PeriodName string `json:"periodName"`
				Value      string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// Fetch returns the monthly series for [startYear, endYear], ascending by
// month. Ranges longer than the API allows are split into several requests.
func (c *Client) Fetch(ctx context.Context, seriesID string, startYear, endYear int) (models.CPISeries, error) {
	if startYear > endYear {
		return models.CPISeries{}, fmt.Errorf("invalid year range %d-%d", startYear, endYear)
	}

	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)

	for from := startYear; from <= endYear; from += maxYearsPerRequest {
		to := min(from+maxYearsPerRequest-1, endYear)

		resp, err := c.post(ctx, request{
			SeriesID:        []string{seriesID},
			StartYear:       strconv.Itoa(from),
			EndYear:         strconv.Itoa(to),
			RegistrationKey: c.apiKey,
		})
		if err != nil {
			return models.CPISeries{}, err
		}

		if err := collect(resp, sums, counts); err != nil {
			return models.CPISeries{}, err
		}
	}

	if len(sums) == 0 {
		return models.CPISeries{}, fmt.Errorf("%w for series %s (%d-%d)", ErrEmptySeries, seriesID, startYear, endYear)
	}

	series := models.CPISeries{SeriesID: seriesID}
	for date, sum := range sums {
		series.Points = append(series.Points, models.CPIPoint{Date: date, Value: sum / float64(counts[date])})
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})

	return series, nil
}

func (c *Client) post(ctx context.Context, body request) (*response, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch data from BLS API: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("could not parse BLS API response: %w", err)
	}
	if parsed.Status != "REQUEST_SUCCEEDED" {
		return nil, &APIError{Status: parsed.Status, Messages: parsed.Message}
	}

	return &parsed, nil
}

func collect(resp *response, sums map[time.Time]float64, counts map[time.Time]int) error {
	if len(resp.Results.Series) == 0 {
		return fmt.Errorf("could not parse BLS API response: no series in results")
	}

	for _, d := range resp.Results.Series[0].Data {
		month, ok := monthOf(d.Period)
		if !ok || strings.TrimSpace(d.Value) == "-" {
			continue
		}
		year, err := strconv.Atoi(d.Year)
		if err != nil {
			return fmt.Errorf("could not parse BLS year %q: %w", d.Year, err)
		}
		value := models.ToFloat(d.Value)
		if value == nil {
			return fmt.Errorf("could not parse BLS value %q for %s %s", d.Value, d.PeriodName, d.Year)
		}

		date := models.MonthStart(year, month)
		sums[date] += *value
		counts[date]++
	}
	return nil
}

// monthOf maps monthly periods M01..M12 to 1..12. The annual average M13 and
// non-monthly periods are skipped.
func monthOf(period string) (int, bool) {
	rest, ok := strings.CutPrefix(period, "M")
	if !ok {
		return 0, false
	}
	m, err := strconv.Atoi(rest)
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}
