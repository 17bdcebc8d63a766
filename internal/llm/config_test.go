package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TaskQuestion))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TaskCoach))
	assert.Equal(t, DefaultCallTimeout, config.CallTimeout)
}

func TestGetModel_FallsBackToCoach(t *testing.T) {
	config := &Config{Models: map[Task]string{TaskCoach: "coach-model"}}

	assert.Equal(t, "coach-model", config.GetModel(TaskTranscribe))
	assert.Equal(t, "", (&Config{}).GetModel(TaskQuestion))
}

func TestTemperatureFor(t *testing.T) {
	config := DefaultConfig()

	assert.InDelta(t, 0.0, config.TemperatureFor(TaskTranscribe), 0.001)
	assert.InDelta(t, 0.7, config.TemperatureFor(TaskCoach), 0.001)
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TaskCoach, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TaskCoach))
	assert.Equal(t, "custom-model", newConfig.GetModel(TaskCoach))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TaskQuestion))
	assert.Equal(t, config.Temperature, newConfig.Temperature)
}

func TestConfigFromEnv(t *testing.T) {
	env := map[string]string{
		"GEMINI_COACH_MODEL": "gemini-2.5-pro",
		"LLM_CALL_TIMEOUT":   "15s",
	}
	config, err := ConfigFromEnv(func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TaskCoach))
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TaskQuestion))
	assert.Equal(t, 15*time.Second, config.CallTimeout)

	_, err = ConfigFromEnv(func(k string) string {
		if k == "LLM_CALL_TIMEOUT" {
			return "soon"
		}
		return ""
	})
	assert.ErrorContains(t, err, "LLM_CALL_TIMEOUT")
}
