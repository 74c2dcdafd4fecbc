// Copyright 2025 Magnus Pierre
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

package positioner

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/loomtable/vgrid/internal/renderercache"
)

// Renderer produces the artifact for a cell fingerprint. Render is the
// host collaborator named in spec §6; it is expected to be pure and
// side-effect free with respect to grid state.
type Renderer interface {
	Render(fp renderercache.Fingerprint) (artifact any, err error)
}

// FallbackMarker is the artifact substituted for a cell whose Renderer
// panicked or returned an error, so the slot still has something to
// display and rendering continues for every other cell (spec §7:
// "Renderer exceptions are isolated per cell: the artifact is discarded,
// the slot emits a fallback marker, and rendering continues for other
// cells").
type FallbackMarker struct {
	Fingerprint renderercache.Fingerprint
	Reason      string
}

// Resolve returns the artifact for fp: a cache hit if present, otherwise
// it invokes renderer, isolating any panic or error into a
// FallbackMarker rather than letting it propagate past this one cell.
func (p *Positioner) Resolve(fp renderercache.Fingerprint, renderer Renderer) any {
	if p.cache != nil {
		if artifact, ok := p.cache.Lookup(fp); ok {
			return artifact
		}
	}

	artifact := p.renderIsolated(fp, renderer)

	if p.cache != nil {
		p.cache.Store(fp, artifact)
	}
	return artifact
}

func (p *Positioner) renderIsolated(fp renderercache.Fingerprint, renderer Renderer) (artifact any) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("rendererKind", fp.RendererKind).Msg("positioner: renderer panicked, substituting fallback marker")
			artifact = FallbackMarker{Fingerprint: fp, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	a, err := renderer.Render(fp)
	if err != nil {
		log.Error().Err(err).Str("rendererKind", fp.RendererKind).Msg("positioner: renderer returned an error, substituting fallback marker")
		return FallbackMarker{Fingerprint: fp, Reason: err.Error()}
	}
	return a
}
