package redisx

import "fmt"

const ns = "tixmarket:v1"

// KeyTicketsGeneration holds a counter that is bumped whenever public
// listings change. Listing cache keys embed it, so a bump orphans every
// cached page at once.
func KeyTicketsGeneration() string {
	return ns + ":tickets:gen"
}

func KeyTicketsSearch(gen int64, query string) string {
	return fmt.Sprintf("%s:tickets:%d:search:%s", ns, gen, query)
}

func KeyTicketsLatest(gen int64) string {
	return fmt.Sprintf("%s:tickets:%d:latest", ns, gen)
}

func KeyTicketsAdvertised(gen int64) string {
	return fmt.Sprintf("%s:tickets:%d:advertised", ns, gen)
}

func KeyVendorStats(vendorID string) string {
	return fmt.Sprintf("%s:stats:vendor:%s", ns, vendorID)
}

// KeyRateLimit prefixes the sliding-window sets of one scope. The limiter
// appends the subject.
func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func KeyIdem(scope, subject, idemKey string) string {
	return fmt.Sprintf("%s:idem:%s:%s:%s", ns, scope, subject, idemKey)
}

func ChannelDomainEvents() string {
	return ns + ":events"
}
