package shortcuts

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/rkoesters/xdg/keyfile"
	"golang.org/x/text/language"
)

// entry is the [Desktop Entry] group of one descriptor, with the keys we
// care about.
type entry struct {
	name      string
	localized map[string]string
	exec      string
	icon      string
	hasIcon   bool
	hidden    bool
	kind      string
}

const desktopGroup = "Desktop Entry"

func readEntry(path string) (entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return entry{}, err
	}
	defer f.Close()

	kf, err := keyfile.New(f)
	if err != nil {
		return entry{}, err
	}
	if !kf.GroupExists(desktopGroup) {
		return entry{}, fmt.Errorf("no [%s] group", desktopGroup)
	}

	e := entry{localized: map[string]string{}}
	for _, key := range kf.Keys(desktopGroup) {
		base, locale, ok := localeKey(key)
		if !ok || base != "Name" {
			continue
		}
		if e.localized[locale], err = kf.String(desktopGroup, key); err != nil {
			return entry{}, fmt.Errorf("%s: %w", key, err)
		}
	}

	for key, dst := range map[string]*string{"Name": &e.name, "Exec": &e.exec, "Icon": &e.icon, "Type": &e.kind} {
		if !kf.KeyExists(desktopGroup, key) {
			continue
		}
		if *dst, err = kf.String(desktopGroup, key); err != nil {
			return entry{}, fmt.Errorf("%s: %w", key, err)
		}
	}
	e.hasIcon = kf.KeyExists(desktopGroup, "Icon")
	if kf.KeyExists(desktopGroup, "Hidden") {
		if e.hidden, err = kf.Bool(desktopGroup, "Hidden"); err != nil {
			return entry{}, fmt.Errorf("Hidden: %w", err)
		}
	}
	return e, nil
}

// localeKey splits "Name[de_DE]" into "Name" and "de_DE".
func localeKey(key string) (base, locale string, ok bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	return key[:open], key[open+1 : len(key)-1], true
}

// posixTag converts a POSIX locale such as "pt_BR.UTF-8@euro" to a
// language tag. "C", "POSIX" and unparsable values give language.Und.
func posixTag(locale string) language.Tag {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return language.Und
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return language.Und
	}
	return tag
}

// userLocale reads the message locale the same way gettext does.
func userLocale() language.Tag {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return posixTag(v)
		}
	}
	return language.Und
}

// displayName picks the Name[xx] variant closest to want, or the plain Name.
func (e entry) displayName(want language.Tag) string {
	if want == language.Und || len(e.localized) == 0 {
		return e.name
	}

	var (
		tags  []language.Tag
		names []string
	)
	for _, locale := range slices.Sorted(maps.Keys(e.localized)) {
		tag := posixTag(locale)
		if tag == language.Und {
			continue
		}
		tags = append(tags, tag)
		names = append(names, e.localized[locale])
	}
	if len(tags) == 0 {
		return e.name
	}

	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return e.name
	}
	return names[idx]
}
