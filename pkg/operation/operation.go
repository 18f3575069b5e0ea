// Copyright 2026 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/renpatch/pkg/config"
	"github.com/walteh/renpatch/pkg/log"
	"github.com/walteh/renpatch/pkg/report"
	"github.com/walteh/renpatch/pkg/status"
)

// 🎯 Operation represents a single executable operation
type Operation interface {
	// 🏃 Execute runs the operation
	Execute(ctx context.Context) error

	// 📝 Name returns the operation's name
	Name() string
}

// ⚙️ Options contains common operation dependencies
type Options struct {
	Config    *config.Config
	StatusMgr *status.Manager
	Collector *report.Collector
	Logger    *zerolog.Logger
	Console   *log.Logger
}

// 🏗️ BaseOperation provides common functionality for operations
type BaseOperation struct {
	Options
}

// 🏭 NewBaseOperation creates a new base operation
func NewBaseOperation(opts Options) BaseOperation {
	return BaseOperation{Options: opts}
}
