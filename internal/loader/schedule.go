package loader

import (
	"context"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	appLog "classclock/internal/log"
)

// Schedule reloads the active timetable on a cron spec ("*/15 * * * *").
// An empty spec or "off" schedules nothing. The returned stop function waits
// for a running reload to finish.
func (l *Loader) Schedule(spec string, loc *time.Location) (func(), error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, "off") {
		return func() {}, nil
	}
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(spec, func() {
		if _, err := l.Reload(context.Background()); !applied(err) {
			appLog.Debug("scheduled reload did not apply", "reason", err.Error())
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	appLog.Info("timetable reload scheduled", "cron", spec, "timezone", loc.String())

	return func() {
		<-c.Stop().Done()
	}, nil
}
