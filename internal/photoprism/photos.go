package photoprism

import (
	"context"
	"fmt"
	"net/url"
)

// GetPhotos retrieves a page of photos matching an optional search query.
// Query examples: "person:jan-novak", "label:portrait", "year:2024"
func (c *Client) GetPhotos(ctx context.Context, count, offset int, query string) ([]Photo, error) {
	endpoint := fmt.Sprintf("photos?count=%d&offset=%d&order=oldest", count, offset)
	if query != "" {
		endpoint += "&q=" + url.QueryEscape(query)
	}

	result, err := doGetJSON[[]Photo](ctx, c, endpoint)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// GetPhotoDetails retrieves the files of a photo
func (c *Client) GetPhotoDetails(ctx context.Context, photoUID string) (*PhotoDetails, error) {
	return doGetJSON[PhotoDetails](ctx, c, "photos/"+url.PathEscape(photoUID))
}

// GetPhotoDownload downloads the primary file of a photo and returns its bytes
// and content type. Face landmarks refer to the primary file, so that is the
// one fetched rather than files[0].
func (c *Client) GetPhotoDownload(ctx context.Context, photoUID string) ([]byte, string, error) {
	details, err := c.GetPhotoDetails(ctx, photoUID)
	if err != nil {
		return nil, "", fmt.Errorf("could not get photo details: %w", err)
	}

	file, ok := details.PrimaryFile()
	if !ok || file.Hash == "" {
		return nil, "", fmt.Errorf("could not find file hash for photo %s", photoUID)
	}
	return c.GetFileDownload(ctx, file.Hash)
}

// GetFileDownload downloads a file by hash via the /api/v1/dl/{hash} endpoint
func (c *Client) GetFileDownload(ctx context.Context, fileHash string) ([]byte, string, error) {
	u := c.baseURL.JoinPath("dl", fileHash)
	u.RawQuery = url.Values{"t": {c.downloadToken}}.Encode()
	return c.getBytes(ctx, u.String())
}
