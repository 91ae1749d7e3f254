package services

import (
	"context"
	"sort"
	"time"

	"blogfeed/models"
	"blogfeed/repositories"

	"gorm.io/gorm"
)

// ts0 is the reference publish time; posts in tests are published relative to it.
var ts0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// memStore backs the fake repositories and counts every call by name.
type memStore struct {
	calls        map[string]int
	posts        map[uint]*models.Post
	translations []models.PostTranslation
	tags         []models.Tag
	postTags     map[[2]uint]bool
	reactions    []models.Reaction
	bookmarks    []models.Bookmark
	follows      map[[2]uint]bool
	queries      []repositories.PostQuery
	createErrs   []error
	nextID       uint
}

func newMemStore() *memStore {
	return &memStore{
		calls:    map[string]int{},
		posts:    map[uint]*models.Post{},
		postTags: map[[2]uint]bool{},
		follows:  map[[2]uint]bool{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) hit(name string) {
	s.calls[name]++
}

func (s *memStore) resetCalls() {
	s.calls = map[string]int{}
	s.queries = nil
}

func (s *memStore) total(prefix string) int {
	n := 0
	for name, c := range s.calls {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			n += c
		}
	}
	return n
}

// addPost stores a post directly, bypassing the service layer.
func (s *memStore) addPost(authorID uint, status models.PostStatus, publishedAt time.Time, likes int) *models.Post {
	p := &models.Post{
		ID:              s.id(),
		AuthorID:        authorID,
		DefaultLanguage: "en",
		Status:          status,
		LikesCount:      likes,
	}
	if status == models.PostStatusPublished {
		at := publishedAt
		p.PublishedAt = &at
	}
	s.posts[p.ID] = p
	return p
}

func (s *memStore) addTranslation(postID uint, code, title, slug string) {
	t := models.PostTranslation{ID: s.id(), PostID: postID, LanguageCode: code, Title: title}
	if slug != "" {
		t.Slug = &slug
	}
	s.translations = append(s.translations, t)
}

func (s *memStore) hydrate(p models.Post) models.Post {
	p.Translations = nil
	for _, t := range s.translations {
		if t.PostID == p.ID {
			p.Translations = append(p.Translations, t)
		}
	}
	sort.Slice(p.Translations, func(i, j int) bool {
		return p.Translations[i].LanguageCode < p.Translations[j].LanguageCode
	})
	p.Tags = nil
	for _, tag := range s.tags {
		if s.postTags[[2]uint{p.ID, tag.ID}] {
			p.Tags = append(p.Tags, tag)
		}
	}
	return p
}

type fakePostRepo struct{ s *memStore }

func (r fakePostRepo) Create(_ context.Context, post *models.Post) error {
	r.s.hit("post.Create")
	if len(r.s.createErrs) > 0 {
		err := r.s.createErrs[0]
		r.s.createErrs = r.s.createErrs[1:]
		return err
	}
	post.ID = r.s.id()
	for i := range post.Translations {
		post.Translations[i].ID = r.s.id()
		post.Translations[i].PostID = post.ID
		r.s.translations = append(r.s.translations, post.Translations[i])
	}
	stored := *post
	stored.Translations = nil
	r.s.posts[post.ID] = &stored
	return nil
}

func (r fakePostRepo) GetByID(_ context.Context, id uint) (*models.Post, error) {
	r.s.hit("post.GetByID")
	p, ok := r.s.posts[id]
	if !ok || p.DeletedAt.Valid {
		return nil, gorm.ErrRecordNotFound
	}
	out := r.s.hydrate(*p)
	return &out, nil
}

func (r fakePostRepo) GetByIDUnscoped(_ context.Context, id uint) (*models.Post, error) {
	r.s.hit("post.GetByIDUnscoped")
	p, ok := r.s.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *p
	return &out, nil
}

func (r fakePostRepo) Update(_ context.Context, post *models.Post) error {
	r.s.hit("post.Update")
	r.apply(post)
	return nil
}

func (r fakePostRepo) apply(post *models.Post) {
	p := r.s.posts[post.ID]
	p.DefaultLanguage = post.DefaultLanguage
	p.CoverImage = post.CoverImage
	p.Status = post.Status
	p.ReadingTime = post.ReadingTime
	p.PublishedAt = post.PublishedAt
}

func (r fakePostRepo) SaveWithTranslations(_ context.Context, post *models.Post, changes repositories.TranslationChanges) error {
	r.s.hit("post.SaveWithTranslations")
	if len(r.s.createErrs) > 0 {
		err := r.s.createErrs[0]
		r.s.createErrs = r.s.createErrs[1:]
		return err
	}

	deleted := map[uint]bool{}
	for _, id := range changes.DeleteIDs {
		deleted[id] = true
	}
	kept := r.s.translations[:0]
	for _, t := range r.s.translations {
		if !deleted[t.ID] {
			kept = append(kept, t)
		}
	}
	r.s.translations = kept

	for _, u := range changes.Update {
		for i := range r.s.translations {
			if r.s.translations[i].ID == u.ID {
				r.s.translations[i].Title = u.Title
				r.s.translations[i].Body = u.Body
				r.s.translations[i].Slug = u.Slug
			}
		}
	}
	for _, c := range changes.Create {
		c.ID = r.s.id()
		c.PostID = post.ID
		r.s.translations = append(r.s.translations, c)
	}

	r.apply(post)
	return nil
}

func (r fakePostRepo) SoftDelete(_ context.Context, id uint) error {
	r.s.hit("post.SoftDelete")
	p := r.s.posts[id]
	p.Status = models.PostStatusDraft
	p.PublishedAt = nil
	p.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

func (r fakePostRepo) Purge(_ context.Context, id uint) error {
	r.s.hit("post.Purge")
	delete(r.s.posts, id)
	kept := r.s.translations[:0]
	for _, t := range r.s.translations {
		if t.PostID != id {
			kept = append(kept, t)
		}
	}
	r.s.translations = kept
	return nil
}

func (r fakePostRepo) ListPublished(_ context.Context, q repositories.PostQuery) ([]models.Post, error) {
	r.s.hit("post.ListPublished")
	r.s.queries = append(r.s.queries, q)

	in := func(ids []uint, id uint) bool {
		for _, x := range ids {
			if x == id {
				return true
			}
		}
		return false
	}

	var tagID uint
	if q.TagName != "" {
		for _, t := range r.s.tags {
			if t.Name == q.TagName {
				tagID = t.ID
			}
		}
		if tagID == 0 {
			return nil, nil
		}
	}

	var matched []models.Post
	for _, p := range r.s.posts {
		if !p.IsPublished() {
			continue
		}
		if len(q.AuthorIDs) > 0 && !in(q.AuthorIDs, p.AuthorID) {
			continue
		}
		if len(q.ExcludeAuthorIDs) > 0 && in(q.ExcludeAuthorIDs, p.AuthorID) {
			continue
		}
		if tagID != 0 && !r.s.postTags[[2]uint{p.ID, tagID}] {
			continue
		}
		matched = append(matched, r.s.hydrate(*p))
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if q.OrderBy == repositories.OrderByLikes && a.LikesCount != b.LikesCount {
			return a.LikesCount > b.LikesCount
		}
		if !a.PublishedAt.Equal(*b.PublishedAt) {
			return a.PublishedAt.After(*b.PublishedAt)
		}
		return a.ID > b.ID
	})

	if q.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (r fakePostRepo) ListPublishedByIDs(_ context.Context, ids []uint) ([]models.Post, error) {
	r.s.hit("post.ListPublishedByIDs")
	var out []models.Post
	for _, id := range ids {
		if p, ok := r.s.posts[id]; ok && p.IsPublished() {
			out = append(out, r.s.hydrate(*p))
		}
	}
	return out, nil
}

func (r fakePostRepo) IncrementCounter(_ context.Context, id uint, counter repositories.PostCounter, delta int) error {
	r.s.hit("post.IncrementCounter")
	p, ok := r.s.posts[id]
	if !ok {
		return nil
	}
	switch counter {
	case repositories.CounterLikes:
		p.LikesCount += delta
	case repositories.CounterBookmarks:
		p.BookmarksCount += delta
	case repositories.CounterViews:
		p.ViewsCount += delta
	}
	return nil
}

func (r fakePostRepo) ReconcileCounters(_ context.Context) (int64, error) {
	r.s.hit("post.ReconcileCounters")
	var changed int64
	for _, p := range r.s.posts {
		likes, bookmarks := 0, 0
		for _, re := range r.s.reactions {
			if re.PostID == p.ID && re.Type == models.ReactionLike {
				likes++
			}
		}
		for _, b := range r.s.bookmarks {
			if b.PostID == p.ID {
				bookmarks++
			}
		}
		if p.LikesCount != likes || p.BookmarksCount != bookmarks {
			p.LikesCount, p.BookmarksCount = likes, bookmarks
			changed++
		}
	}
	return changed, nil
}

type fakeTranslationRepo struct{ s *memStore }

func (r fakeTranslationRepo) SlugExists(_ context.Context, languageCode, slug string, excludePostID uint) (bool, error) {
	r.s.hit("translation.SlugExists")
	for _, t := range r.s.translations {
		if t.LanguageCode == languageCode && t.Slug != nil && *t.Slug == slug && t.PostID != excludePostID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeTranslationRepo) GetBySlug(_ context.Context, languageCode, slug string) (*models.PostTranslation, error) {
	r.s.hit("translation.GetBySlug")
	for _, t := range r.s.translations {
		if t.LanguageCode == languageCode && t.Slug != nil && *t.Slug == slug {
			out := t
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeTagRepo struct{ s *memStore }

func (r fakeTagRepo) find(name string) *models.Tag {
	for i := range r.s.tags {
		if r.s.tags[i].Name == name {
			return &r.s.tags[i]
		}
	}
	return nil
}

func (r fakeTagRepo) Create(_ context.Context, tag *models.Tag) error {
	r.s.hit("tag.Create")
	if r.find(tag.Name) != nil {
		return gorm.ErrDuplicatedKey
	}
	tag.ID = r.s.id()
	r.s.tags = append(r.s.tags, *tag)
	return nil
}

func (r fakeTagRepo) CreateMissing(_ context.Context, tags []models.Tag) error {
	r.s.hit("tag.CreateMissing")
	for _, tag := range tags {
		if r.find(tag.Name) == nil {
			tag.ID = r.s.id()
			r.s.tags = append(r.s.tags, tag)
		}
	}
	return nil
}

func (r fakeTagRepo) GetByName(_ context.Context, name string) (*models.Tag, error) {
	r.s.hit("tag.GetByName")
	if t := r.find(name); t != nil {
		out := *t
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeTagRepo) GetByNames(_ context.Context, names []string) ([]models.Tag, error) {
	r.s.hit("tag.GetByNames")
	var out []models.Tag
	for _, name := range names {
		if t := r.find(name); t != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r fakeTagRepo) GetByID(_ context.Context, id uint) (*models.Tag, error) {
	r.s.hit("tag.GetByID")
	for _, t := range r.s.tags {
		if t.ID == id {
			out := t
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeTagRepo) GetAll(_ context.Context) ([]models.Tag, error) {
	r.s.hit("tag.GetAll")
	out := append([]models.Tag(nil), r.s.tags...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakeTagRepo) GetLinkedTagIDs(_ context.Context, postID uint, tagIDs []uint) ([]uint, error) {
	r.s.hit("tag.GetLinkedTagIDs")
	var out []uint
	for _, id := range tagIDs {
		if r.s.postTags[[2]uint{postID, id}] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r fakeTagRepo) CreateLinks(_ context.Context, links []models.PostTag) error {
	r.s.hit("tag.CreateLinks")
	for _, l := range links {
		r.s.postTags[[2]uint{l.PostID, l.TagID}] = true
	}
	return nil
}

func (r fakeTagRepo) DeleteLinks(_ context.Context, postID uint, tagIDs []uint) (int64, error) {
	r.s.hit("tag.DeleteLinks")
	var n int64
	for _, id := range tagIDs {
		key := [2]uint{postID, id}
		if r.s.postTags[key] {
			delete(r.s.postTags, key)
			n++
		}
	}
	return n, nil
}

func (r fakeTagRepo) DeleteLinksExcept(_ context.Context, postID uint, keepTagIDs []uint) error {
	r.s.hit("tag.DeleteLinksExcept")
	keep := map[uint]bool{}
	for _, id := range keepTagIDs {
		keep[id] = true
	}
	for key := range r.s.postTags {
		if key[0] == postID && !keep[key[1]] {
			delete(r.s.postTags, key)
		}
	}
	return nil
}

type fakeReactionRepo struct{ s *memStore }

func (r fakeReactionRepo) CountByPosts(_ context.Context, postIDs []uint) ([]models.ReactionCount, error) {
	r.s.hit("reaction.CountByPosts")
	counts := map[uint]map[models.ReactionType]int{}
	for _, re := range r.s.reactions {
		if counts[re.PostID] == nil {
			counts[re.PostID] = map[models.ReactionType]int{}
		}
		counts[re.PostID][re.Type]++
	}
	var rows []models.ReactionCount
	for _, id := range postIDs {
		for t, n := range counts[id] {
			rows = append(rows, models.ReactionCount{PostID: id, Type: t, Count: n})
		}
	}
	return rows, nil
}

func (r fakeReactionRepo) ListByUser(_ context.Context, userID uint, postIDs []uint) ([]models.Reaction, error) {
	r.s.hit("reaction.ListByUser")
	wanted := map[uint]bool{}
	for _, id := range postIDs {
		wanted[id] = true
	}
	var out []models.Reaction
	for _, re := range r.s.reactions {
		if re.UserID == userID && wanted[re.PostID] {
			out = append(out, re)
		}
	}
	return out, nil
}

func (r fakeReactionRepo) Find(_ context.Context, postID, userID uint, reactionType models.ReactionType) (*models.Reaction, error) {
	r.s.hit("reaction.Find")
	for _, re := range r.s.reactions {
		if re.PostID == postID && re.UserID == userID && re.Type == reactionType {
			out := re
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeReactionRepo) Create(_ context.Context, reaction *models.Reaction) error {
	r.s.hit("reaction.Create")
	reaction.ID = r.s.id()
	r.s.reactions = append(r.s.reactions, *reaction)
	return nil
}

func (r fakeReactionRepo) Delete(_ context.Context, id uint) error {
	r.s.hit("reaction.Delete")
	kept := r.s.reactions[:0]
	for _, re := range r.s.reactions {
		if re.ID != id {
			kept = append(kept, re)
		}
	}
	r.s.reactions = kept
	return nil
}

type fakeBookmarkRepo struct{ s *memStore }

func (r fakeBookmarkRepo) ListByUser(_ context.Context, userID uint, postIDs []uint) ([]models.Bookmark, error) {
	r.s.hit("bookmark.ListByUser")
	wanted := map[uint]bool{}
	for _, id := range postIDs {
		wanted[id] = true
	}
	var out []models.Bookmark
	for _, b := range r.s.bookmarks {
		if b.UserID == userID && wanted[b.PostID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r fakeBookmarkRepo) ListPostIDsByUser(_ context.Context, userID uint, offset, limit int) ([]uint, error) {
	r.s.hit("bookmark.ListPostIDsByUser")
	var ids []uint
	for i := len(r.s.bookmarks) - 1; i >= 0; i-- {
		if r.s.bookmarks[i].UserID == userID {
			ids = append(ids, r.s.bookmarks[i].PostID)
		}
	}
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r fakeBookmarkRepo) Find(_ context.Context, postID, userID uint) (*models.Bookmark, error) {
	r.s.hit("bookmark.Find")
	for _, b := range r.s.bookmarks {
		if b.PostID == postID && b.UserID == userID {
			out := b
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeBookmarkRepo) Create(_ context.Context, bookmark *models.Bookmark) error {
	r.s.hit("bookmark.Create")
	bookmark.ID = r.s.id()
	r.s.bookmarks = append(r.s.bookmarks, *bookmark)
	return nil
}

func (r fakeBookmarkRepo) Delete(_ context.Context, id uint) error {
	r.s.hit("bookmark.Delete")
	kept := r.s.bookmarks[:0]
	for _, b := range r.s.bookmarks {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	r.s.bookmarks = kept
	return nil
}

type fakeFollowRepo struct{ s *memStore }

func (r fakeFollowRepo) FolloweeIDs(_ context.Context, followerID uint) ([]uint, error) {
	r.s.hit("follow.FolloweeIDs")
	var ids []uint
	for key := range r.s.follows {
		if key[0] == followerID {
			ids = append(ids, key[1])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r fakeFollowRepo) Exists(_ context.Context, followerID, followeeID uint) (bool, error) {
	r.s.hit("follow.Exists")
	return r.s.follows[[2]uint{followerID, followeeID}], nil
}

func (r fakeFollowRepo) Create(_ context.Context, follow *models.Follow) error {
	r.s.hit("follow.Create")
	r.s.follows[[2]uint{follow.FollowerID, follow.FolloweeID}] = true
	return nil
}

func (r fakeFollowRepo) Delete(_ context.Context, followerID, followeeID uint) error {
	r.s.hit("follow.Delete")
	delete(r.s.follows, [2]uint{followerID, followeeID})
	return nil
}

// testServices wires every service over one memStore.
type testServices struct {
	store        *memStore
	slugs        SlugService
	tags         TagService
	translations TranslationManager
	engagement   EngagementService
	feeds        FeedService
	posts        PostService
	interactions InteractionService
}

func newTestServices() *testServices {
	s := newMemStore()
	postRepo := fakePostRepo{s}
	translationRepo := fakeTranslationRepo{s}

	ts := &testServices{store: s}
	ts.slugs = NewSlugService(translationRepo)
	ts.tags = NewTagService(fakeTagRepo{s})
	ts.translations = NewTranslationManager(ts.slugs)
	ts.engagement = NewEngagementService(fakeReactionRepo{s}, fakeBookmarkRepo{s})
	ts.feeds = NewFeedService(postRepo, fakeFollowRepo{s}, ts.engagement)
	ts.posts = NewPostService(postRepo, translationRepo, ts.translations, ts.tags, ts.engagement)
	ts.interactions = NewInteractionService(postRepo, fakeReactionRepo{s}, fakeBookmarkRepo{s}, fakeFollowRepo{s}, ts.engagement)
	return ts
}

func strPtr(s string) *string {
	return &s
}
