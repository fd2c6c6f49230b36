// Package refresh keeps the dashboard's live views current. Each view is
// fetched and applied independently so one failing endpoint never blocks or
// corrupts the others.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rmaia/dispatchboard/core/backend"
	"github.com/rmaia/dispatchboard/core/logger"
	"github.com/rmaia/dispatchboard/core/metrics"
	"github.com/rmaia/dispatchboard/core/session"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// Controller refreshes the session's views from the backend, on a schedule
// and on explicit triggers.
type Controller struct {
	client   backend.Client
	sess     *session.Session
	log      logger.Logger
	sink     metrics.MetricsSink
	interval time.Duration
	cron     *cron.Cron
}

// New creates a Controller. A nil logger or sink is replaced with a no-op.
func New(client backend.Client, sess *session.Session, log logger.Logger, sink metrics.MetricsSink, interval time.Duration) *Controller {
	if log == nil {
		log = nopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Controller{
		client:   client,
		sess:     sess,
		log:      log,
		sink:     sink,
		interval: interval,
	}
}

// RefreshAll refreshes every view concurrently and returns when all are done.
// Per-view failures are recorded in the session, never returned.
func (c *Controller) RefreshAll(ctx context.Context) {
	c.Refresh(ctx, session.ViewQueue, session.ViewTeams, session.ViewAreas, session.ViewRegions)
}

// Refresh refreshes only the given views, concurrently. Unknown views are
// ignored with a warning.
func (c *Controller) Refresh(ctx context.Context, views ...session.View) {
	var wg sync.WaitGroup
	for _, v := range views {
		fn := c.viewRefresher(v)
		if fn == nil {
			c.log.Warnf("unknown view %q", v)
			continue
		}
		wg.Add(1)
		go func(v session.View, fn func(context.Context) error) {
			defer wg.Done()
			start := time.Now()
			err := fn(ctx)
			if err != nil {
				c.log.Errorf("refresh %s: %v", v, err)
			}
			if serr := c.sink.RecordRefresh(metrics.RefreshResult{
				View:     string(v),
				Duration: time.Since(start),
				Err:      err,
				Time:     start,
			}); serr != nil {
				c.log.Warnf("record refresh metric: %v", serr)
			}
		}(v, fn)
	}
	wg.Wait()
}

func (c *Controller) viewRefresher(v session.View) func(context.Context) error {
	switch v {
	case session.ViewQueue:
		return c.refreshQueue
	case session.ViewTeams:
		return c.refreshTeams
	case session.ViewAreas:
		return c.refreshAreas
	case session.ViewRegions:
		return c.refreshRegions
	default:
		return nil
	}
}

func (c *Controller) refreshQueue(ctx context.Context) error {
	if c.sess.Mode() == session.ModeInsertion {
		data, err := c.client.Calls(ctx)
		if err != nil {
			c.sess.FailQueue(err)
			return err
		}
		c.sess.ApplyQueue(data)
		return nil
	}
	data, err := c.client.PrioritizedCalls(ctx)
	if err != nil {
		c.sess.FailQueue(err)
		return err
	}
	c.sess.ApplyQueue(data)
	return nil
}

func (c *Controller) refreshTeams(ctx context.Context) error {
	data, err := c.client.Teams(ctx)
	if err != nil {
		c.sess.FailTeams(err)
		return err
	}
	c.sess.ApplyTeams(data)
	return nil
}

func (c *Controller) refreshAreas(ctx context.Context) error {
	data, err := c.client.Areas(ctx)
	if err != nil {
		c.sess.FailAreas(err)
		return err
	}
	c.sess.ApplyAreas(data)
	return nil
}

func (c *Controller) refreshRegions(ctx context.Context) error {
	root, err := c.client.Regions(ctx)
	if err != nil {
		c.sess.FailRegions(err)
		return err
	}
	c.sess.ApplyRegions(root)
	return nil
}

// SetViewMode switches the queue ordering. A mode change forces exactly one
// refresh of the queue view and touches nothing else.
func (c *Controller) SetViewMode(ctx context.Context, mode session.ViewMode) {
	if !c.sess.SetMode(mode) {
		return
	}
	c.log.Infof("queue view mode set to %s", mode)
	c.Refresh(ctx, session.ViewQueue)
}

// RefreshTeamActions loads the action history for a team into the session.
func (c *Controller) RefreshTeamActions(ctx context.Context, teamID int) error {
	c.sess.SelectTeam(teamID)
	actions, err := c.client.TeamActions(ctx, teamID)
	if err != nil {
		c.sess.FailActions(err)
		return err
	}
	c.sess.ApplyActions(actions)
	return nil
}

// Start schedules the background refresh of the spontaneous views (queue,
// teams, areas). The region hierarchy only changes on demand and is excluded
// from the periodic cycle.
func (c *Controller) Start(ctx context.Context) error {
	if c.cron != nil {
		return fmt.Errorf("controller already started")
	}
	c.cron = cron.New()
	spec := fmt.Sprintf("@every %s", c.interval)
	if _, err := c.cron.AddFunc(spec, func() {
		c.Refresh(ctx, session.ViewQueue, session.ViewTeams, session.ViewAreas)
	}); err != nil {
		c.cron = nil
		return fmt.Errorf("schedule refresh: %w", err)
	}
	c.cron.Start()
	c.log.Infof("background refresh every %s", c.interval)
	return nil
}

// Stop halts the background schedule. In-flight refreshes finish on their own.
func (c *Controller) Stop() {
	if c.cron == nil {
		return
	}
	c.cron.Stop()
	c.cron = nil
}
