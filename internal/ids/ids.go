package ids

import "github.com/segmentio/ksuid"

// New returns a K-sortable unique identifier. Entity IDs sort by creation
// time, which keeps the created_at ORDER BY indexes happy.
func New() string {
	return ksuid.New().String()
}
