package stride

import (
	"time"

	"github.com/stride-labs/stride-emission/pkg/config"
	"github.com/stride-labs/stride-emission/pkg/config/env"
	"github.com/stride-labs/stride-emission/pkg/config/memory"
	"github.com/stride-labs/stride-emission/pkg/config/wrapper"
)

const (
	envConfigPrefix = "STRIDE_SUBMITTER_"

	SkipPreflightConfigEnvName = envConfigPrefix + "SKIP_PREFLIGHT"
	defaultSkipPreflight       = false

	FetchLogsOnFailureConfigEnvName = envConfigPrefix + "FETCH_LOGS_ON_FAILURE"
	defaultFetchLogsOnFailure       = true

	ConfirmationTimeoutConfigEnvName = envConfigPrefix + "CONFIRMATION_TIMEOUT"
	defaultConfirmationTimeout       = 30 * time.Second
)

type submitterConf struct {
	skipPreflight       config.Bool
	fetchLogsOnFailure  config.Bool
	confirmationTimeout config.Duration
}

// ConfigProvider defines how submitter config values are pulled
type ConfigProvider func() *submitterConf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *submitterConf {
		return &submitterConf{
			skipPreflight:       env.NewBoolConfig(SkipPreflightConfigEnvName, defaultSkipPreflight),
			fetchLogsOnFailure:  env.NewBoolConfig(FetchLogsOnFailureConfigEnvName, defaultFetchLogsOnFailure),
			confirmationTimeout: env.NewDurationConfig(ConfirmationTimeoutConfigEnvName, defaultConfirmationTimeout),
		}
	}
}

type testOverrides struct {
	skipPreflight       bool
	fetchLogsOnFailure  bool
	confirmationTimeout time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *submitterConf {
		return &submitterConf{
			skipPreflight:       wrapper.NewBoolConfig(memory.NewConfig(overrides.skipPreflight), defaultSkipPreflight),
			fetchLogsOnFailure:  wrapper.NewBoolConfig(memory.NewConfig(overrides.fetchLogsOnFailure), defaultFetchLogsOnFailure),
			confirmationTimeout: wrapper.NewDurationConfig(memory.NewConfig(overrides.confirmationTimeout), defaultConfirmationTimeout),
		}
	}
}
