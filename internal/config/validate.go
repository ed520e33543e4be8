package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateChunking(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateChunking() error {
	if c.Chunking.MaxChunkSeconds <= 0 {
		return errors.New("chunking.max_chunk_seconds must be positive")
	}
	if c.Chunking.OverlapSeconds < 0 {
		return errors.New("chunking.overlap_seconds must not be negative")
	}
	if c.Chunking.OverlapSeconds >= c.Chunking.MaxChunkSeconds {
		return errors.New("chunking.overlap_seconds must be smaller than chunking.max_chunk_seconds")
	}
	if c.Chunking.MinChunkSeconds < 0 {
		return errors.New("chunking.min_chunk_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.MaxRetries < 0 {
		return errors.New("transcription.max_retries must not be negative")
	}
	switch c.Transcription.TrimStrategy {
	case "proportional", "none":
	default:
		return fmt.Errorf("transcription.trim_strategy: unknown value %q (expected \"proportional\" or \"none\")", c.Transcription.TrimStrategy)
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	if c.Synthesis.MaxRetries < 0 {
		return errors.New("synthesis.max_retries must not be negative")
	}
	if c.Synthesis.BudgetChars < 256 {
		return errors.New("synthesis.budget_chars must be at least 256")
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.BaseDelaySeconds < 0 {
		return errors.New("retry.base_delay_seconds must not be negative")
	}
	if c.Retry.Multiplier < 1 {
		return errors.New("retry.multiplier must be at least 1")
	}
	if c.Retry.MaxDelaySeconds < c.Retry.BaseDelaySeconds {
		return errors.New("retry.max_delay_seconds must not be smaller than retry.base_delay_seconds")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.FailureThreshold < 0 || c.Pipeline.FailureThreshold > 1 {
		return errors.New("pipeline.failure_threshold must be between 0 and 1")
	}
	return nil
}
