package search

import (
	"context"
	"fmt"
	"strings"

	"mediasearch/src/log"
)

// Assembler applies the pagination window and enriches the returned page
// with batch-signed preview URLs.
type Assembler struct {
	signer URLSigner
}

func NewAssembler(signer URLSigner) *Assembler {
	return &Assembler{signer: signer}
}

// AssembleSemantic finalizes a fully-ranked semantic result list: the
// confidence threshold is applied first, totalResults reflects the filtered
// count, and only then is the page window sliced out and signed.
func (a *Assembler) AssembleSemantic(ctx context.Context, q SearchQuery, ranked []SearchHit) (*SearchResponse, error) {
	filtered := make([]SearchHit, 0, len(ranked))
	for _, hit := range ranked {
		if hit.Score >= q.MinScore {
			filtered = append(filtered, hit)
		}
	}

	page := paginate(filtered, q.Offset(), q.PageSize)
	warnings := a.signPage(ctx, page)

	return &SearchResponse{
		Metadata: SearchMetadata{
			TotalResults: int64(len(filtered)),
			Page:         q.Page,
			PageSize:     q.PageSize,
			SearchTerm:   q.Text,
		},
		Results:  page,
		Warnings: warnings,
	}, nil
}

// AssembleKeyword finalizes a keyword result page. Pagination already
// happened natively in the full-text index, so the hits arrive pre-sliced
// with the index's total.
func (a *Assembler) AssembleKeyword(ctx context.Context, q SearchQuery, result *KeywordResult) (*SearchResponse, error) {
	page := make([]SearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		page = append(page, SearchHit{
			AssetID: hit.AssetID,
			Score:   hit.Score,
			Source:  hit.Source,
		})
	}

	warnings := a.signPage(ctx, page)
	if q.FacetsRequested && result.Facets == nil {
		warnings = append(warnings, "facet aggregation unavailable")
	}

	return &SearchResponse{
		Metadata: SearchMetadata{
			TotalResults: result.Total,
			Page:         q.Page,
			PageSize:     q.PageSize,
			SearchTerm:   q.Text,
			Facets:       result.Facets,
		},
		Results:  page,
		Warnings: warnings,
	}, nil
}

func paginate(hits []SearchHit, offset, pageSize int) []SearchHit {
	if offset >= len(hits) {
		return []SearchHit{}
	}
	end := offset + pageSize
	if end > len(hits) {
		end = len(hits)
	}
	return hits[offset:end]
}

// signPage requests signed URLs for every thumbnail and proxy on the page in
// one batch call and merges them back. A signing failure degrades the URL
// fields only, reported as a warning, never as an error.
func (a *Assembler) signPage(ctx context.Context, page []SearchHit) []string {
	if len(page) == 0 {
		return nil
	}

	// Two refs per hit, positional: thumbnail then proxy.
	refs := make([]ObjectRef, 0, len(page)*2)
	for _, hit := range page {
		refs = append(refs,
			locationRef(hit.Source, "thumbnailLocation"),
			locationRef(hit.Source, "proxyLocation"),
		)
	}

	urls, err := a.signer.SignBatch(ctx, refs)
	if err == nil && len(urls) != len(refs) {
		err = fmt.Errorf("signer returned %d urls for %d refs", len(urls), len(refs))
	}
	if err != nil {
		log.Error(err, "preview URL signing failed for page", "refs", len(refs))
		return []string{"preview URL signing unavailable"}
	}

	degraded := false
	for i := range page {
		thumb, proxy := urls[i*2], urls[i*2+1]
		page[i].ThumbnailURL = thumb
		page[i].ProxyURL = proxy
		if (refs[i*2] != ObjectRef{} && thumb == "") || (refs[i*2+1] != ObjectRef{} && proxy == "") {
			degraded = true
		}
	}
	if degraded {
		return []string{"some preview URLs could not be signed"}
	}
	return nil
}

// locationRef splits a stored "bucket/object" location string into a signing
// ref. Missing or malformed locations yield a zero ref, which the signer
// skips.
func locationRef(doc Document, field string) ObjectRef {
	if doc == nil {
		return ObjectRef{}
	}
	location, ok := doc[field].(string)
	if !ok || location == "" {
		return ObjectRef{}
	}
	bucket, key, found := strings.Cut(location, "/")
	if !found || bucket == "" || key == "" {
		return ObjectRef{}
	}
	return ObjectRef{Bucket: bucket, Key: key}
}
