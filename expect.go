// Package expect implements auto-retrying assertions against remote,
// asynchronously-changing UI targets. A caller expresses an expectation
// about the state of a located element (has text X, is visible, has an
// attribute matching a regex) and the engine re-evaluates it against the
// live target until it holds or a deadline elapses.
//
// The remote side is abstracted behind the common.Evaluator interface:
// the engine only sends an expectation descriptor per attempt and
// interprets the structured result. How the element is located or
// re-located, and how the request travels over the wire, is owned by the
// Evaluator implementation.
package expect

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/browserkit/expect/common"
	"github.com/browserkit/expect/expectconf"
	"github.com/browserkit/expect/log"
)

// New creates an assertion surface for the given target, configured from
// the process environment (see expectconf for the recognized variables).
func New(ctx context.Context, target common.Evaluator) (*common.Assertions, error) {
	conf, err := expectconf.GetConsolidatedConfig(nil, environMap(os.Environ()))
	if err != nil {
		return nil, err
	}
	return NewWithConfig(ctx, target, conf)
}

// NewWithConfig creates an assertion surface for the given target using
// an already consolidated configuration.
func NewWithConfig(ctx context.Context, target common.Evaluator, conf expectconf.Config) (*common.Assertions, error) {
	var filter *regexp.Regexp
	if conf.LogCategoryFilter.Valid && conf.LogCategoryFilter.String != "" {
		var err error
		if filter, err = regexp.Compile(conf.LogCategoryFilter.String); err != nil {
			return nil, err
		}
	}
	logger := log.New(logrus.New(), conf.Debug.Bool, filter)
	if conf.Debug.Bool {
		if err := logger.SetLevel("debug"); err != nil {
			return nil, err
		}
	}

	ts := common.NewTimeoutSettings(nil)
	if conf.DefaultTimeout.Valid {
		ts.SetDefaultTimeout(conf.DefaultTimeout.TimeDuration())
	}

	return common.NewAssertions(ctx, target, ts, logger), nil
}

func environMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return env
}
