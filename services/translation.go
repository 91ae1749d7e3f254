package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"blogfeed/models"
	"blogfeed/repositories"
)

const (
	wordsPerMinute = 200

	// MaxLanguageCodeLength is the size of the language code columns.
	MaxLanguageCodeLength = 10
)

// ReadingTime is the estimated minutes to read body. Empty bodies take 0 minutes.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

func readingTimeOf(translations []models.PostTranslation) int {
	longest := 0
	for _, t := range translations {
		if minutes := ReadingTime(t.Body); minutes > longest {
			longest = minutes
		}
	}
	return longest
}

func NormalizeLanguageCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func validateLanguageCode(code string) error {
	if code == "" {
		return models.ErrorValidation{Field: "translations", Message: "language code is required"}
	}
	if len(code) > MaxLanguageCodeLength {
		return models.ErrorValidation{Field: "translations", Message: fmt.Sprintf("language code %q is longer than %d characters", code, MaxLanguageCodeLength)}
	}
	return nil
}

// TranslationPlan is the outcome of an update: what to write and what the
// post will look like afterwards.
type TranslationPlan struct {
	Changes      repositories.TranslationChanges
	Translations []models.PostTranslation
	ReadingTime  int
}

type TranslationManager interface {
	BuildForCreate(ctx context.Context, defaultLanguage string, inputs []models.TranslationInput) ([]models.PostTranslation, int, error)
	PlanUpdate(ctx context.Context, post *models.Post, defaultLanguage string, patches []models.TranslationPatch) (*TranslationPlan, error)
}

type translationManager struct {
	slugs SlugService
}

func NewTranslationManager(slugs SlugService) TranslationManager {
	return &translationManager{slugs: slugs}
}

func (m *translationManager) BuildForCreate(ctx context.Context, defaultLanguage string, inputs []models.TranslationInput) ([]models.PostTranslation, int, error) {
	if len(inputs) == 0 {
		return nil, 0, models.ErrorValidation{Field: "translations", Message: "at least one translation is required"}
	}

	defaultLanguage = NormalizeLanguageCode(defaultLanguage)
	seen := make(map[string]bool, len(inputs))
	translations := make([]models.PostTranslation, 0, len(inputs))
	for _, in := range inputs {
		code := NormalizeLanguageCode(in.LanguageCode)
		if err := validateLanguageCode(code); err != nil {
			return nil, 0, err
		}
		if seen[code] {
			return nil, 0, models.ErrorValidation{Field: "translations", Message: "duplicate language code " + code}
		}
		seen[code] = true
		translations = append(translations, models.PostTranslation{
			LanguageCode: code,
			Title:        in.Title,
			Body:         in.Body,
		})
	}

	if !seen[defaultLanguage] {
		return nil, 0, models.ErrorValidation{Field: "default_language", Message: "must match one of the translations"}
	}

	for i := range translations {
		if err := m.assignSlug(ctx, &translations[i], 0); err != nil {
			return nil, 0, err
		}
	}

	return translations, readingTimeOf(translations), nil
}

func (m *translationManager) PlanUpdate(ctx context.Context, post *models.Post, defaultLanguage string, patches []models.TranslationPatch) (*TranslationPlan, error) {
	defaultLanguage = NormalizeLanguageCode(defaultLanguage)
	if patches == nil {
		if post.Translation(defaultLanguage) == nil {
			return nil, models.ErrorValidation{Field: "default_language", Message: "must match one of the translations"}
		}
		current := append([]models.PostTranslation(nil), post.Translations...)
		return &TranslationPlan{Translations: current, ReadingTime: readingTimeOf(current)}, nil
	}

	requested := make(map[string]models.TranslationPatch, len(patches))
	order := make([]string, 0, len(patches))
	for _, p := range patches {
		code := NormalizeLanguageCode(p.LanguageCode)
		if err := validateLanguageCode(code); err != nil {
			return nil, err
		}
		if _, dup := requested[code]; dup {
			return nil, models.ErrorValidation{Field: "translations", Message: "duplicate language code " + code}
		}
		requested[code] = p
		order = append(order, code)
	}

	plan := &TranslationPlan{}
	deleted := make(map[string]bool)
	for _, existing := range post.Translations {
		if _, ok := requested[existing.LanguageCode]; !ok {
			plan.Changes.DeleteIDs = append(plan.Changes.DeleteIDs, existing.ID)
			deleted[existing.LanguageCode] = true
		}
	}

	// Nothing is written or resolved until the whole request is known to be valid
	if len(requested) == 0 {
		return nil, models.ErrorConflict{Invariant: "at_least_one_translation", Message: "a post must keep at least one translation"}
	}
	if _, ok := requested[defaultLanguage]; !ok {
		if deleted[defaultLanguage] {
			return nil, models.ErrorValidation{Field: "translations", Message: "cannot delete the default language translation"}
		}
		return nil, models.ErrorValidation{Field: "default_language", Message: "must match one of the translations"}
	}

	for _, code := range order {
		patch := requested[code]

		existing := post.Translation(code)
		if existing == nil {
			t := models.PostTranslation{PostID: post.ID, LanguageCode: code}
			if patch.Title != nil {
				t.Title = *patch.Title
			}
			if patch.Body != nil {
				t.Body = *patch.Body
			}
			if err := m.assignSlug(ctx, &t, post.ID); err != nil {
				return nil, err
			}
			plan.Changes.Create = append(plan.Changes.Create, t)
			plan.Translations = append(plan.Translations, t)
			continue
		}

		t := *existing
		titleChanged := patch.Title != nil && *patch.Title != t.Title
		bodyChanged := patch.Body != nil && *patch.Body != t.Body
		if titleChanged {
			t.Title = *patch.Title
			if err := m.assignSlug(ctx, &t, post.ID); err != nil {
				return nil, err
			}
		}
		if bodyChanged {
			t.Body = *patch.Body
		}
		if titleChanged || bodyChanged {
			plan.Changes.Update = append(plan.Changes.Update, t)
		}
		plan.Translations = append(plan.Translations, t)
	}

	sort.Slice(plan.Translations, func(i, j int) bool {
		return plan.Translations[i].LanguageCode < plan.Translations[j].LanguageCode
	})
	plan.ReadingTime = readingTimeOf(plan.Translations)

	return plan, nil
}

// assignSlug sets t.Slug from its title, or clears it when the title is blank.
func (m *translationManager) assignSlug(ctx context.Context, t *models.PostTranslation, excludePostID uint) error {
	if strings.TrimSpace(t.Title) == "" {
		t.Slug = nil
		return nil
	}
	slug, err := m.slugs.Resolve(ctx, t.LanguageCode, t.Title, excludePostID)
	if err != nil {
		return err
	}
	t.Slug = &slug
	return nil
}
