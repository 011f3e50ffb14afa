package s3store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/S-Muro0526/wasabi/internal/errors"
	"github.com/S-Muro0526/wasabi/internal/storage"
	"github.com/S-Muro0526/wasabi/internal/version"
)

// objectPager walks ListObjectsV2 with continuation tokens.
type objectPager struct {
	client            *Client
	prefix            string
	continuationToken *string
	hasMorePages      bool
	firstPage         bool
}

// HasMorePages returns true if there are more pages to fetch.
func (p *objectPager) HasMorePages() bool {
	return p.firstPage || p.hasMorePages
}

// NextPage fetches the next page of results.
func (p *objectPager) NextPage(ctx context.Context) (*storage.ObjectPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.client.bucket),
		MaxKeys: aws.Int32(p.client.pageSize),
	}
	if p.prefix != "" {
		input.Prefix = aws.String(p.prefix)
	}
	if !p.firstPage && p.continuationToken != nil {
		input.ContinuationToken = p.continuationToken
	}

	output, err := p.client.api.ListObjectsV2(ctx, input)
	if err != nil {
		p.hasMorePages = false
		p.firstPage = false
		return nil, errors.NewError("listObjects", classify(err)).WithBucket(p.client.bucket)
	}

	p.firstPage = false
	p.continuationToken = output.NextContinuationToken
	p.hasMorePages = aws.ToBool(output.IsTruncated) && p.continuationToken != nil

	page := &storage.ObjectPage{
		Objects: make([]storage.Object, 0, len(output.Contents)),
	}
	for _, obj := range output.Contents {
		page.Objects = append(page.Objects, storage.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified).UTC(),
			ETag:         aws.ToString(obj.ETag),
		})
	}
	return page, nil
}

// versionPager walks ListObjectVersions with key and version-id markers.
type versionPager struct {
	client          *Client
	prefix          string
	keyMarker       *string
	versionIDMarker *string
	hasMorePages    bool
	firstPage       bool
}

// HasMorePages returns true if there are more pages to fetch.
func (p *versionPager) HasMorePages() bool {
	return p.firstPage || p.hasMorePages
}

// NextPage fetches the next page of results.
func (p *versionPager) NextPage(ctx context.Context) (*version.Page, error) {
	input := &s3.ListObjectVersionsInput{
		Bucket:  aws.String(p.client.bucket),
		MaxKeys: aws.Int32(p.client.pageSize),
	}
	if p.prefix != "" {
		input.Prefix = aws.String(p.prefix)
	}
	if !p.firstPage {
		input.KeyMarker = p.keyMarker
		input.VersionIdMarker = p.versionIDMarker
	}

	output, err := p.client.api.ListObjectVersions(ctx, input)
	if err != nil {
		p.hasMorePages = false
		p.firstPage = false
		return nil, errors.NewError("listVersions", classifyVersionListing(err)).WithBucket(p.client.bucket)
	}

	p.firstPage = false
	p.keyMarker = output.NextKeyMarker
	p.versionIDMarker = output.NextVersionIdMarker
	p.hasMorePages = aws.ToBool(output.IsTruncated) && p.keyMarker != nil

	page := &version.Page{
		Versions:      make([]version.Entry, 0, len(output.Versions)),
		DeleteMarkers: make([]version.Entry, 0, len(output.DeleteMarkers)),
	}
	for _, v := range output.Versions {
		page.Versions = append(page.Versions, version.Entry{
			Key:          aws.ToString(v.Key),
			VersionID:    aws.ToString(v.VersionId),
			LastModified: aws.ToTime(v.LastModified).UTC(),
			Size:         aws.ToInt64(v.Size),
			IsLatest:     aws.ToBool(v.IsLatest),
		})
	}
	for _, m := range output.DeleteMarkers {
		page.DeleteMarkers = append(page.DeleteMarkers, version.Entry{
			Key:            aws.ToString(m.Key),
			VersionID:      aws.ToString(m.VersionId),
			LastModified:   aws.ToTime(m.LastModified).UTC(),
			IsDeleteMarker: true,
			IsLatest:       aws.ToBool(m.IsLatest),
		})
	}
	return page, nil
}
