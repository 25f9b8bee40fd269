package rest

// DefaultPageSize is the page size used when the client does not send one.
const DefaultPageSize = 10

// PageInfo tells the client how to continue a paged listing. CursorNext is
// non-null exactly when the returned page is full, which signals "there may
// be more". If the true last page happens to be exactly full the client is
// over-signalled and will issue one extra, empty request; clients rely on
// this, so it stays.
type PageInfo struct {
	CursorNext *int64 `json:"cursorNext"`
}

// PagedResult is the wire shape of a cursor-paged listing.
type PagedResult struct {
	Data     interface{} `json:"data"`
	PageInfo PageInfo    `json:"pageInfo"`
}

// FindManyOptions is the storage-level windowing derived from the request.
// The cursor row itself is re-fetched as an anchor, which is why a cursor
// implies a skip of one.
type FindManyOptions struct {
	CursorID *int64
	Skip     int
	Take     int
}

// Paginate derives the windowing options from the validated query. It is
// the shared entry point for every paged list endpoint.
func Paginate(q Query) FindManyOptions {
	options := FindManyOptions{Take: DefaultPageSize}
	if pageSize, ok := q.Int("pageSize"); ok {
		options.Take = int(pageSize)
	}
	if cursorID, ok := q.Int("cursorId"); ok {
		options.CursorID = &cursorID
		options.Skip = 1
	}
	return options
}

// PageInfo computes the continuation cursor for a returned page: the last
// row's id when the page is exactly full, null otherwise.
func (o FindManyOptions) PageInfo(count int, lastID int64) PageInfo {
	if count == o.Take {
		return PageInfo{CursorNext: &lastID}
	}
	return PageInfo{}
}
