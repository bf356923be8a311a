package importer

// Option configures parsers built by a Factory.
type Option func(*config)

type config struct {
	player string
	holes  int
}

func defaultConfig() config {
	return config{player: defaultPlayer, holes: defaultHoles}
}

// WithDefaultPlayer names the player for files that carry a single player's
// rounds without naming them.
func WithDefaultPlayer(player string) Option {
	return func(c *config) {
		if player != "" {
			c.player = player
		}
	}
}

// WithDefaultHoles sets the holes played for rows that leave it blank.
func WithDefaultHoles(holes int) Option {
	return func(c *config) {
		if holes > 0 {
			c.holes = holes
		}
	}
}
