package domain

// Link is a single-use URL contributed to the pool.
//
// A Link has no identity of its own: the pool is a FIFO queue and two
// entries carrying the same URL are distinct. Cancelled and timer-expired
// links re-enter the pool as fresh entries under the original contributor.
type Link struct {
	// URL is the contributed link, handed out verbatim.
	URL string

	// ContributorID is the chat id of the admin who supplied the link.
	ContributorID string

	// ContributorName is kept alongside the id so reports and
	// notifications never need a registry lookup.
	ContributorName string
}
