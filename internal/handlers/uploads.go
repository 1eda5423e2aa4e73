package handlers

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/BIHBOB/ssiteJungle/internal/store"
)

type UploadHandler struct {
	Store     *store.Store
	UploadDir string
}

const maxUploadSize = 10 << 20 // 10MB

// saveImage decodes, downscales and re-encodes an uploaded image, returning
// its public URL. Everything is stored as JPEG with a uuid name.
func (h *UploadHandler) saveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	var img image.Image
	var err error
	switch filepath.Ext(header.Filename) {
	case ".png":
		img, err = png.Decode(file)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
	default:
		return "", fmt.Errorf("unsupported image format, only PNG and JPEG are allowed")
	}
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Max width 800px, preserve aspect ratio
	newImage := resize.Resize(800, 0, img, resize.Lanczos3)

	filename := fmt.Sprintf("%s.jpg", uuid.New().String())
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(filepath.Join(h.UploadDir, filename))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := jpeg.Encode(out, newImage, &jpeg.Options{Quality: 80}); err != nil {
		return "", err
	}
	return "/uploads/" + filename, nil
}

// UploadImage is the admin endpoint for product photos.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "File too large. Max 10MB.")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeFieldErrors(w, map[string]string{"image": "Image file is required."})
		return
	}
	defer file.Close()

	url, err := h.saveImage(file, header)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// UploadPaymentProof attaches a bank-transfer screenshot to the caller's own
// order and flips its payment status to pending_verification.
func (h *UploadHandler) UploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	order, err := h.Store.GetOrderByID(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if order == nil {
		writeMessage(w, http.StatusNotFound, "Order not found")
		return
	}
	user := userFrom(r)
	if !user.IsAdmin && order.UserID != user.ID {
		writeMessage(w, http.StatusForbidden, "Not your order")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "File too large. Max 10MB.")
		return
	}
	file, header, err := r.FormFile("proof")
	if err != nil {
		writeFieldErrors(w, map[string]string{"proof": "Proof file is required."})
		return
	}
	defer file.Close()

	url, err := h.saveImage(file, header)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Store.AttachPaymentProof(id, url); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
