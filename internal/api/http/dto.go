package apihttp

import (
	"github.com/shopspring/decimal"

	schedule "tariff-cloud/internal/schedule/domain"
	tariff "tariff-cloud/internal/tariff/domain"
	"tariff-cloud/internal/tariff/extraction"
)

type recordDTO struct {
	Region       string              `json:"region"`
	City         string              `json:"city,omitempty"`
	Scheme       string              `json:"scheme"`
	SchemeLabel  string              `json:"scheme_label"`
	VoltageLabel string              `json:"voltage_label"`
	Flat         decimal.NullDecimal `json:"flat_price"`
	Sharp        decimal.NullDecimal `json:"sharp_price"`
	Peak         decimal.NullDecimal `json:"peak_price"`
	FlatTier     decimal.NullDecimal `json:"flat_tier_price"`
	Valley       decimal.NullDecimal `json:"valley_price"`
	Deep         decimal.NullDecimal `json:"deep_price"`
}

type parseResponse struct {
	Region         string      `json:"region"`
	RegionDetected bool        `json:"region_detected"`
	Warnings       []string    `json:"warnings"`
	VoltageRows    []int       `json:"voltage_rows"`
	Records        []recordDTO `json:"records"`
}

func newParseResponse(result extraction.ParseResult) parseResponse {
	resp := parseResponse{
		Region:         result.Region.Name,
		RegionDetected: result.Region.Detected,
		Warnings:       make([]string, 0, len(result.Warnings)),
		VoltageRows:    result.VoltageRows,
		Records:        recordDTOs(result.Records),
	}
	for _, w := range result.Warnings {
		resp.Warnings = append(resp.Warnings, w.Error())
	}
	return resp
}

func recordDTOs(records []tariff.Record) []recordDTO {
	out := make([]recordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, recordDTO{
			Region:       r.Region,
			City:         r.City,
			Scheme:       string(r.Scheme),
			SchemeLabel:  r.Scheme.Label(),
			VoltageLabel: r.VoltageLabel,
			Flat:         r.Flat,
			Sharp:        r.Sharp,
			Peak:         r.Peak,
			FlatTier:     r.FlatTier,
			Valley:       r.Valley,
			Deep:         r.Deep,
		})
	}
	return out
}

func segmentDTOs(segs []schedule.MergedSegment) []segmentDTO {
	out := make([]segmentDTO, 0, len(segs))
	for _, s := range segs {
		out = append(out, segmentDTO{
			Start:   schedule.FormatClock(s.Start),
			End:     schedule.FormatClock(s.End),
			Energy:  s.Energy,
			Service: s.Service,
			Total:   s.Total,
		})
	}
	return out
}
