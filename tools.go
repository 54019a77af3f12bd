// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

//go:build tools
// +build tools

// Package main pins tool and test dependencies to go.mod.
// See https://go.dev/wiki/Modules#how-can-i-track-tool-dependencies-for-a-module
package main

import (
	// ginkgo CLI runs the integration suite: ginkgo -tags integration ./test/integration/...
	_ "github.com/onsi/ginkgo/v2/ginkgo"

	// Testing frameworks
	_ "github.com/onsi/gomega"
	_ "github.com/stretchr/testify/assert"
	_ "github.com/stretchr/testify/mock"
	_ "github.com/stretchr/testify/require"
	_ "go.uber.org/goleak"
)
