package idscene

import (
	"log/slog"
	"slices"

	"github.com/pkg/errors"

	"github.com/saiko-tech/idscene/pkg/gameconfig"
	"github.com/saiko-tech/idscene/pkg/wad"
)

// AnimationStateMap maps an animated texture to its next frame.
// Frames are not linked by name: a configured range covers every lump (for
// flats) or TEXTUREx entry (for walls) that sits between its start and end in
// archive order, and the last frame wraps around to the first.
//
// The map is immutable after construction and safe for concurrent reads.
type AnimationStateMap struct {
	next map[TextureRef]TextureRef
}

// NewAnimationStateMap builds the map from configured ranges.
// lumpNames is the archive's lump order (flats), textureNames the TEXTUREx
// order (walls). Ranges that cannot be resolved are logged and skipped.
func NewAnimationStateMap(cfg *gameconfig.Config, lumpNames, textureNames []string, log *slog.Logger) *AnimationStateMap {
	m := &AnimationStateMap{next: make(map[TextureRef]TextureRef)}

	for _, r := range cfg.Flats {
		if !m.addRange(lumpNames, r, FlatTexture) {
			log.Warn("failed to find animation states for flats", slog.String("start", r.Start), slog.String("end", r.End))
		}
	}

	for _, r := range cfg.Walls {
		if !m.addRange(textureNames, r, WallTexture) {
			log.Warn("failed to find animation states for walls", slog.String("start", r.Start), slog.String("end", r.End))
		}
	}

	return m
}

// LoadAnimationStateMap reads lump and texture order from the archive.
// An archive without TEXTURE1 simply has no wall animations.
func LoadAnimationStateMap(archive *wad.Archive, cfg *gameconfig.Config, log *slog.Logger) (*AnimationStateMap, error) {
	textureNames, err := archive.TextureNames()
	if err != nil && !errors.Is(err, wad.ErrMissingLump) {
		return nil, errors.Wrap(err, "failed to read texture names")
	}

	return NewAnimationStateMap(cfg, archive.LumpNamesInOrder, textureNames, log), nil
}

func (m *AnimationStateMap) addRange(names []string, r gameconfig.Range, ref func(string) TextureRef) bool {
	start := slices.Index(names, r.Start)
	end := slices.Index(names, r.End)

	if start < 0 || end <= start {
		return false
	}

	for i := start; i <= end; i++ {
		j := i + 1
		if i == end {
			j = start
		}

		m.next[ref(names[i])] = ref(names[j])
	}

	return true
}

// Next returns the frame following t.
func (m *AnimationStateMap) Next(t TextureRef) (TextureRef, bool) {
	n, ok := m.next[t]
	return n, ok
}

// Contains reports whether t is animated.
func (m *AnimationStateMap) Contains(t TextureRef) bool {
	_, ok := m.next[t]
	return ok
}

func (m *AnimationStateMap) Len() int {
	return len(m.next)
}

// Keys returns every animated texture in a stable order.
func (m *AnimationStateMap) Keys() []TextureRef {
	keys := make([]TextureRef, 0, len(m.next))
	for k := range m.next {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b TextureRef) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}

		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})

	return keys
}
