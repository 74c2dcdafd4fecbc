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
	"testing"

	"github.com/loomtable/vgrid/grid"
	"github.com/loomtable/vgrid/internal/pool"
	"github.com/loomtable/vgrid/internal/renderercache"
)

func countKinds(ops []Op) (mounts, unmounts, updates int) {
	for _, op := range ops {
		switch op.Kind {
		case "mount":
			mounts++
		case "unmount":
			unmounts++
		case "update":
			updates++
		}
	}
	return
}

func TestDiffInitialMountsOnly(t *testing.T) {
	p, _ := pool.New(20)
	pos := New(p, nil, nil)

	ops := pos.Diff(grid.VisibleRange{StartRow: 0, EndRow: 2, StartCol: 0, EndCol: 2})
	mounts, unmounts, _ := countKinds(ops)

	if mounts != 4 {
		t.Errorf("mounts = %d, want 4", mounts)
	}
	if unmounts != 0 {
		t.Errorf("unmounts = %d, want 0", unmounts)
	}
}

func TestDiffUnmountsPrecedeMounts(t *testing.T) {
	p, _ := pool.New(20)
	pos := New(p, nil, nil)

	pos.Diff(grid.VisibleRange{StartRow: 0, EndRow: 2, StartCol: 0, EndCol: 1})
	ops := pos.Diff(grid.VisibleRange{StartRow: 1, EndRow: 3, StartCol: 0, EndCol: 1})

	sawMount := false
	for _, op := range ops {
		if op.Kind == "mount" {
			sawMount = true
		}
		if op.Kind == "unmount" && sawMount {
			t.Fatal("unmount observed after a mount; ordering guarantee violated")
		}
	}
}

func TestDiffPersistWithoutFingerprintChangeEmitsNoUpdate(t *testing.T) {
	p, _ := pool.New(20)
	fp := renderercache.Fingerprint{RendererKind: "text", ValueDigest: "v1"}
	pos := New(p, nil, func(pool.Coord) renderercache.Fingerprint { return fp })

	pos.Diff(grid.VisibleRange{StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 1})
	ops := pos.Diff(grid.VisibleRange{StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 1})

	_, _, updates := countKinds(ops)
	if updates != 0 {
		t.Errorf("updates = %d, want 0 when fingerprint unchanged", updates)
	}
}

func TestDiffPersistWithFingerprintChangeEmitsUpdate(t *testing.T) {
	p, _ := pool.New(20)
	version := "v1"
	pos := New(p, nil, func(pool.Coord) renderercache.Fingerprint {
		return renderercache.Fingerprint{RendererKind: "text", ValueDigest: version}
	})

	pos.Diff(grid.VisibleRange{StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 1})
	version = "v2"
	ops := pos.Diff(grid.VisibleRange{StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 1})

	_, _, updates := countKinds(ops)
	if updates != 1 {
		t.Errorf("updates = %d, want 1 when fingerprint changed", updates)
	}
}
