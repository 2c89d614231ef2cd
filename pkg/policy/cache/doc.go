// Package cache provides an in-memory cache for resolved effective
// policies.
//
// Resolution is a pure function of the contributing scopes, so a cached
// policy stays valid exactly until any contributing scope changes. The
// cache therefore keys entries by bot id and validates hits against the
// policy fingerprint (a hash over the scope ids and update timestamps):
// a changed scope set misses naturally, with no explicit invalidation
// protocol needed. A TTL and an entry bound keep the cache from growing
// without limit across bots.
package cache
