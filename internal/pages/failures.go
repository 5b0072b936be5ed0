package pages

import "sync"

// failures is a size-capped set of background errors keyed by page.
type failures struct {
	mu   sync.Mutex
	max  int
	errs map[string]error
}

func newFailures(max int) *failures {
	return &failures{max: max, errs: make(map[string]error)}
}

func (f *failures) put(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.errs[key]; !ok && len(f.errs) >= f.max {
		for k := range f.errs {
			delete(f.errs, k)
			break
		}
	}
	f.errs[key] = err
}

// take returns and forgets the error recorded for key.
func (f *failures) take(key string) (error, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	err, ok := f.errs[key]
	delete(f.errs, key)
	return err, ok
}

func (f *failures) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errs)
}
