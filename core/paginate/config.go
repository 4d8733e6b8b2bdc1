package paginate

import (
	"time"

	"github.com/steven-peralta/discord-paginationembed/core/config"
)

// ApplyConfig applies library-level defaults loaded from file and
// environment to this session. Individual setters called afterwards still
// override it.
func (s *Session[T]) ApplyConfig(cfg config.SessionConfig) *Session[T] {
	if cfg.TimeoutMS > 0 {
		s.SetTimeout(time.Duration(cfg.TimeoutMS) * time.Millisecond)
	}
	if cfg.StartPage > 1 {
		s.SetPage(cfg.StartPage)
	}
	s.SetPageIndicator(cfg.PageIndicator)
	s.SetDeleteOnTimeout(cfg.DeleteOnTimeout)

	if len(cfg.NavigationKeys) > 0 {
		keys := make(map[Navigation]string, len(cfg.NavigationKeys))
		for id, key := range cfg.NavigationKeys {
			keys[Navigation(id)] = key
		}
		s.SetNavigationKeys(keys)
	}
	if len(cfg.DisabledNavigation) > 0 {
		ids := make([]Navigation, 0, len(cfg.DisabledNavigation))
		for _, id := range cfg.DisabledNavigation {
			ids = append(ids, Navigation(id))
		}
		s.SetDisabledNavigation(ids...)
	}
	return s
}
