package player

// MPV implements Player for mpv.
type MPV struct{}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool { return lookPath("mpv") }

func (m *MPV) Args(url, title string) []string {
	return []string{
		url,
		"--force-media-title=" + title,
		"--really-quiet",
	}
}

// MPVCompatible implements Player for iina and celluloid, which accept
// mpv-style flags.
type MPVCompatible struct {
	name string
}

func (g *MPVCompatible) Name() string { return g.name }

func (g *MPVCompatible) Available() bool { return lookPath(g.name) }

func (g *MPVCompatible) Args(url, title string) []string {
	return []string{url, "--force-media-title=" + title}
}
