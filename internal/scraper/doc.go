// Package scraper downloads ISU competition pages and the result documents they link to.
//
// Requests carry a User-Agent and a per-request timeout. Network errors, 5xx and 429
// responses are retried with exponential backoff; other 4xx responses fail at once.
// Downloads are skipped when the target file already exists, so an interrupted run can
// simply be restarted.
package scraper
