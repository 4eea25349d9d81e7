package studyprofile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// fakeStore is an in-memory DocumentStore. Writes can be made to fail on
// specific call numbers to exercise partial-failure isolation, and a
// failing write can mutate the stored document to play the concurrent
// writer that won the version race.
type fakeStore struct {
	mu          sync.Mutex
	docs        map[string]*ProfileDocument
	writeCalls  int
	failWrites  map[int]error
	raceWriters map[int]func(*StudyProfile)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:        map[string]*ProfileDocument{},
		failWrites:  map[int]error{},
		raceWriters: map[int]func(*StudyProfile){},
	}
}

func (f *fakeStore) seed(userID string, profile *StudyProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[userID] = &ProfileDocument{UserID: userID, Profile: *cloneProfile(profile), Version: 1}
}

func (f *fakeStore) profile(userID string) *StudyProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[userID]
	if !ok {
		return nil
	}
	return cloneProfile(&doc.Profile)
}

func (f *fakeStore) GetProfile(_ context.Context, userID string) (*ProfileDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &ProfileDocument{UserID: userID, Profile: *cloneProfile(&doc.Profile), Version: doc.Version}, nil
}

func (f *fakeStore) CreateProfile(_ context.Context, userID string, profile *StudyProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[userID]; ok {
		return nil
	}
	f.docs[userID] = &ProfileDocument{UserID: userID, Profile: *cloneProfile(profile), Version: 1}
	return nil
}

func (f *fakeStore) ReplaceProfile(_ context.Context, userID string, profile *StudyProfile, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writeCalls++
	if err, ok := f.failWrites[f.writeCalls]; ok {
		if race, ok := f.raceWriters[f.writeCalls]; ok {
			if doc, exists := f.docs[userID]; exists {
				race(&doc.Profile)
				doc.Version++
			}
		}
		return err
	}

	doc, ok := f.docs[userID]
	if !ok {
		return ErrProfileNotFound
	}
	if doc.Version != expectedVersion {
		return ErrVersionConflict
	}
	doc.Profile = *cloneProfile(profile)
	doc.Version++
	return nil
}

func (f *fakeStore) ArrayUnion(_ context.Context, userID string, path string, values ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writeCalls++
	if err, ok := f.failWrites[f.writeCalls]; ok {
		return err
	}

	doc, ok := f.docs[userID]
	if !ok {
		return ErrProfileNotFound
	}

	switch path {
	case PathKnowledgeInsights:
		for _, value := range values {
			insight, ok := value.(KnowledgeInsight)
			if !ok {
				return fmt.Errorf("unexpected value type %T for %s", value, path)
			}
			doc.Profile.KnowledgeInsights = append(doc.Profile.KnowledgeInsights, insight)
		}
	case PathCompetitions:
		for _, value := range values {
			competition, ok := value.(Competition)
			if !ok {
				return fmt.Errorf("unexpected value type %T for %s", value, path)
			}
			doc.Profile.Competitions = append(doc.Profile.Competitions, competition)
		}
	default:
		return fmt.Errorf("unsupported array path %s", path)
	}

	doc.Version++
	return nil
}

func cloneProfile(profile *StudyProfile) *StudyProfile {
	data, err := json.Marshal(profile)
	if err != nil {
		panic(err)
	}
	clone := &StudyProfile{}
	if err := json.Unmarshal(data, clone); err != nil {
		panic(err)
	}
	return clone
}
