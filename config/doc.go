// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads client configuration from a YAML file and
// HTTPCALLS_* environment variables.
//
// A minimal configuration file:
//
//	base_url: https://api.example.com
//	headers:
//	  Accept: application/json
//	timeout: 10s
//	retry:
//	  max_attempts: 2
//	  delay: 100ms
//
// Durations are written in Go syntax. Fields left out keep the values of
// DefaultConfig.
package config
