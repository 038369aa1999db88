package listing

import "github.com/99minutos/storefront/internal/core/domain"

// SelectCover picks the image flagged as cover, else the first image, else
// the placeholder.
func SelectCover(images []domain.Image) string {
	if len(images) == 0 {
		return domain.DefaultItemImage
	}
	for _, img := range images {
		if img.IsCover {
			return img.URL
		}
	}
	return images[0].URL
}

// CoverURL resolves the selected cover against the storage base URL.
func CoverURL(storageBase string, images []domain.Image) string {
	return domain.ResolveMediaURL(storageBase, SelectCover(images), domain.DefaultItemImage)
}
