package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"blogfeed/repositories"

	"golang.org/x/text/unicode/norm"
)

const (
	slugFallback    = "post"
	maxSlugAttempts = 1000

	// MaxSlugLength is the size of the slug column.
	MaxSlugLength = 255
)

var (
	reSlugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	reSlugSpaces  = regexp.MustCompile(`\s+`)
	reSlugHyphens = regexp.MustCompile(`-+`)
)

// GenerateSlug turns a title into a lowercase, hyphen separated slug.
// Every character outside [a-z0-9] is dropped, accented letters included,
// so "Café" gives "caf". The result may be empty.
func GenerateSlug(title string) string {
	return slugify(strings.ToLower(title))
}

// GenerateFoldedSlug is GenerateSlug with diacritics folded to their base
// letter first, so "Café" gives "cafe".
func GenerateFoldedSlug(title string) string {
	return slugify(strings.ToLower(foldDiacritics(title)))
}

func slugify(s string) string {
	// RE2 \s only knows ASCII whitespace
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
	s = reSlugInvalid.ReplaceAllString(s, "")
	s = reSlugSpaces.ReplaceAllString(s, "-")
	s = reSlugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func foldDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// truncateSlug cuts an ASCII slug to at most maxLen bytes without leaving a
// trailing hyphen.
func truncateSlug(slug string, maxLen int) string {
	if len(slug) <= maxLen {
		return slug
	}
	return strings.TrimRight(slug[:maxLen], "-")
}

type SlugService interface {
	// Resolve returns a slug for title that no other post uses in languageCode.
	Resolve(ctx context.Context, languageCode, title string, excludePostID uint) (string, error)
}

type SlugOption func(*slugService)

// WithDiacriticFolding makes Resolve keep accented letters as their base
// letter instead of dropping them.
func WithDiacriticFolding() SlugOption {
	return func(s *slugService) {
		s.generate = GenerateFoldedSlug
	}
}

type slugService struct {
	translationRepo repositories.TranslationRepository
	generate        func(title string) string
}

func NewSlugService(translationRepo repositories.TranslationRepository, opts ...SlugOption) SlugService {
	s := &slugService{translationRepo: translationRepo, generate: GenerateSlug}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve tries base, base-1, base-2, ... Every candidate fits in
// MaxSlugLength; base is shortened to leave room for the suffix.
func (s *slugService) Resolve(ctx context.Context, languageCode, title string, excludePostID uint) (string, error) {
	base := truncateSlug(s.generate(title), MaxSlugLength)
	if base == "" {
		base = slugFallback
	}

	candidate := base
	for i := 1; i <= maxSlugAttempts; i++ {
		taken, err := s.translationRepo.SlugExists(ctx, languageCode, candidate, excludePostID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		candidate = truncateSlug(base, MaxSlugLength-len(suffix)) + suffix
	}

	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxSlugAttempts)
}
