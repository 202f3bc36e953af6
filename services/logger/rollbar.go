// Package logsvc reports to Rollbar and writes structured logs to stdout.
package logsvc

import (
	"fmt"
	"io"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"github.com/rs/zerolog"

	"github.com/berkanmatematik/platform/core"
)

// personer is implemented by values identifying the current user, e.g. session.Session.
type personer interface {
	Person() core.Person
}

type RollbarLogger struct {
	zl zerolog.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl zerolog.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{zl: zl}
}

// NewStdLogger returns the stdout logger; console output in DEV, JSON otherwise.
func NewStdLogger(w io.Writer, conf *core.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}
	if conf.Env == "DEV" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", conf.AppName).Logger()
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, core.Person (or a personer)
func (l *RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, *core.Person) {
	var person *core.Person
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		var p *core.Person
		switch a := arg.(type) {
		case core.Person:
			p = &a
		case personer:
			pp := a.Person()
			p = &pp
		}
		if p == nil {
			newArgs = append(newArgs, arg)
		} else if person == nil { // only set one person
			person = p
		}
	}
	if person != nil {
		rollbar.SetPerson(person.ID, person.Name, person.Email)
	} else {
		rollbar.ClearPerson()
	}
	return newArgs, person
}

func (l *RollbarLogger) event(evt *zerolog.Event, msg string, args []interface{}, person *core.Person) {
	if person != nil {
		evt = evt.Str("user_id", person.ID)
	}
	for _, arg := range args[1:] { // args[0] is msg
		switch a := arg.(type) {
		case error:
			evt = evt.Err(a)
		case map[string]interface{}:
			evt = evt.Fields(a)
		default:
			evt = evt.Str("extra", fmt.Sprintf("%+v", a))
		}
	}
	evt.Msg(msg)
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	newArgs, person := l.prepare(msg, args)
	rollbar.Debug(newArgs...)
	l.event(l.zl.Debug(), msg, newArgs, person)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	newArgs, person := l.prepare(msg, args)
	rollbar.Info(newArgs...)
	l.event(l.zl.Info(), msg, newArgs, person)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	newArgs, person := l.prepare(msg, args)
	rollbar.Warning(newArgs...)
	l.event(l.zl.Warn(), msg, newArgs, person)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	newArgs, person := l.prepare(msg, args)
	rollbar.Error(newArgs...)
	l.event(l.zl.Error(), msg, newArgs, person)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	newArgs, person := l.prepare(msg, args)
	rollbar.Critical(newArgs...)
	rollbar.Wait()
	l.event(l.zl.Fatal(), msg, newArgs, person)
}
