package ledgerdto

import "github.com/LavaJover/shvark-referral-service/internal/domain"

type GetHistoryOutput struct {
	Entries []*domain.TransactionHistoryEntry
	Total   int64
}
