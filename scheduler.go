package main

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// startScheduler wires the periodic pipeline run. Returns nil when the
// schedule is disabled.
func (a *App) startScheduler() *cron.Cron {
	if a.cfg.CronSpec == "" {
		log.Println("scheduler: disabled")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(a.cfg.CronSpec, func() {
		a.runPipeline(context.Background())
	})
	if err != nil {
		log.Fatal("scheduler: bad PIPELINE_CRON: ", err)
	}
	c.Start()
	log.Println("scheduler: pipeline runs on", a.cfg.CronSpec)
	return c
}
