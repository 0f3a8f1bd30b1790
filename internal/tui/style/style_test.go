package style

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxnote/voxnote/internal/store"
)

func TestApplyThemeRoundTrip(t *testing.T) {
	darkSubtitle := Subtitle.GetForeground()
	darkHelp := Help.GetForeground()
	darkMuted := Muted.GetForeground()
	darkLabel := Label.GetForeground()

	ApplyTheme(store.ThemeLight)
	require.NotEqual(t, darkSubtitle, Subtitle.GetForeground())
	require.NotEqual(t, darkMuted, Muted.GetForeground())

	ApplyTheme(store.ThemeDark)
	require.Equal(t, darkSubtitle, Subtitle.GetForeground())
	require.Equal(t, darkHelp, Help.GetForeground())
	require.Equal(t, darkMuted, Muted.GetForeground())
	require.Equal(t, darkLabel, Label.GetForeground())
}
