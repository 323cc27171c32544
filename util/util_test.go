package util

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"testing"
)

func TestGenerateNewFileName(t *testing.T) {
	dir := os.TempDir()
	fileDir := dir + "/liber-test-util"
	fileLoc := fileDir + "/test.epub"
	if _, err := os.Stat(fileDir); os.IsNotExist(err) {
		err := os.Mkdir(fileDir, 0755)
		if err != nil {
			t.Fatalf("Error create tempDir: %s, err: %v", fileDir, err)
		}
	}
	defer os.RemoveAll(fileDir)

	if _, err := os.Create(fileLoc); err != nil {
		t.Fatalf("Error create file: %s", fileLoc)
	}

	for i := 1; i < 15; i++ {
		newFile := GenerateNewFileName(fileLoc)
		t.Logf("New filename: %s", newFile)
		expected := fmt.Sprintf("%s/test_%d.epub", fileDir, i)
		if newFile != expected {
			t.Errorf("Error generate new filename, expected: %s, but got: %s", expected, newFile)
		}
		if _, err := os.Create(newFile); err != nil {
			t.Errorf("Error create new file: %s, err: %v", newFile, err)
		}
	}
}

func TestHasPrefixes(t *testing.T) {
	if !HasPrefixes("/api/v1/books", "/api/v1", "/healthcheck") {
		t.Errorf("Expected prefix match")
	}
	if HasPrefixes("/metrics", "/api/v1", "/healthcheck") {
		t.Errorf("Expected no prefix match")
	}
}

func TestUIDMatcher(t *testing.T) {
	valid := []string{"ada", "reader-01", "a1b"}
	invalid := []string{"", "a", "-ada", "ada-", "Ada", "a b"}

	for _, s := range valid {
		if !UIDMatcher.MatchString(s) {
			t.Errorf("Expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if UIDMatcher.MatchString(s) {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("ada@example.org") {
		t.Errorf("Expected valid email")
	}
	if ValidateEmail("not-an-email") {
		t.Errorf("Expected invalid email")
	}
}

// createTempImage creates a temporary image file for testing purposes.
func createTempImage(extension string) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 0, 255})
		}
	}

	tempFile, err := os.CreateTemp("", "test-*."+extension)
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	switch extension {
	case "jpg", "jpeg":
		err = jpeg.Encode(tempFile, img, nil)
	case "png":
		err = png.Encode(tempFile, img)
	}

	if err != nil {
		return "", err
	}

	return tempFile.Name(), nil
}

func TestImageToWebp(t *testing.T) {
	formats := []string{"jpg", "jpeg", "png"}

	for _, format := range formats {
		t.Run(fmt.Sprintf("Test %s to WebP", format), func(t *testing.T) {
			tempFile, err := createTempImage(format)
			if err != nil {
				t.Fatalf("Failed to create temporary %s file: %v", format, err)
			}
			defer os.Remove(tempFile)

			// 75 is the quality of the WebP image
			outputFileName := ImageToWebp(tempFile, 75)
			if outputFileName == "" {
				t.Fatal("Expected output file name, got empty string")
			}

			if _, err := os.Stat(outputFileName); os.IsNotExist(err) {
				t.Errorf("Expected WebP file %s to exist, but it does not", outputFileName)
			} else {
				os.Remove(outputFileName)
			}
		})
	}
}
