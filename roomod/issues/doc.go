// Registry of switcharoo defect kinds ("issues").
//
// Each kind is tagged as severe ("bad") or cosmetic. A submission with any severe issue can not serve as the next link in the switcharoo chain. The registry is static, built once at process start, and read-only afterwards.
package issues
