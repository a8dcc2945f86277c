// Roomod component for caching short string values with a fixed TTL and purging.
//
// Includes an interface and implementations using redis and in-process memory.
//
// The evaluation pipeline uses this to remember the processing status of recently seen submissions, so that a submission is never dispatched twice.
package cachestore
