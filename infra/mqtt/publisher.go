package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kilianp07/pumpplan/core/plan"
)

// Announcement is the message published when a plan finishes.
type Announcement struct {
	RunID           string             `json:"run_id"`
	Year            int                `json:"year"`
	Target          int                `json:"target"`
	Status          string             `json:"status"`
	FailedPass      string             `json:"failed_pass,omitempty"`
	Error           string             `json:"error,omitempty"`
	FinalProduction int                `json:"final_production"`
	TotalCost       float64            `json:"total_cost"`
	BandProduction  map[string]int     `json:"band_production"`
	BandCost        map[string]float64 `json:"band_cost"`
	Timestamp       int64              `json:"timestamp"`
}

// NewAnnouncement summarizes res.
func NewAnnouncement(res *plan.Result) Announcement {
	a := Announcement{
		RunID:           res.RunID,
		Year:            res.Year,
		Target:          res.Target,
		Status:          string(res.Summary.Status),
		FailedPass:      string(res.Summary.FailedPass),
		Error:           res.Summary.Error,
		FinalProduction: res.Summary.FinalProduction,
		TotalCost:       res.Summary.TotalCost,
		BandProduction:  make(map[string]int, len(res.Summary.BandProduction)),
		BandCost:        make(map[string]float64, len(res.Summary.BandCost)),
		Timestamp:       time.Now().UnixMilli(),
	}
	for b, v := range res.Summary.BandProduction {
		a.BandProduction[b.String()] = v
	}
	for b, v := range res.Summary.BandCost {
		a.BandCost[b.String()] = v
	}
	return a
}

// PublishResult announces a finished run on <topic>/<year>.
func (p *PahoClient) PublishResult(res *plan.Result) error {
	payload, err := json.Marshal(NewAnnouncement(res))
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/%d", p.cfg.Topic, res.Year)
	if err := p.publish(topic, payload); err != nil {
		return fmt.Errorf("announce run %s: %w", res.RunID, err)
	}
	p.log.Infof("announced run %s on %s", res.RunID, topic)
	return nil
}
