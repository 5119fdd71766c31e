package theme

import (
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
)

// Bind publishes a theme-changed trigger to pub whenever the theme attribute
// of root changes. The returned function stops publishing.
func Bind(root *Root, pub ports.Publisher) (dispose func()) {
	return root.Observe(func(attr, _, _ string) {
		if attr == AttrTheme {
			pub.Publish(domain.NewTrigger(domain.TriggerThemeChanged, "root"))
		}
	})
}
