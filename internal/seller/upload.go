package seller

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes はアップロード全体の上限サイズ（32MiB）。
const maxUploadBytes = 32 << 20

// initUploadDir はアップロード先ディレクトリを作成する。
func initUploadDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// safeUploadName は元のファイル名からパス区切りなどを除去し、
// ミリ秒タイムスタンプを前置した保存用ファイル名を生成する。
func safeUploadName(original string) string {
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	// 英数字とハイフン以外は捨てる
	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	stem = b.String()
	if stem == "" {
		stem = "file"
	}

	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), stem, ext)
}

// handleUpload は商品画像のアップロードを処理するハンドラを返す。
// multipart/form-dataの"files"フィールドで複数ファイルを受け取り、
// 保存先のURL一覧を返す。URLはgateway経由でそのまま参照できる/uploads/パス。
func (s *Server) handleUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_FAILED"})
			return
		}
		files := form.File["files"]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "NO_FILES"})
			return
		}

		results := make([]gin.H, 0, len(files))
		for i, fh := range files {
			name := safeUploadName(fh.Filename)
			dst := filepath.Join(s.uploadDir, name)
			if err := c.SaveUploadedFile(fh, dst); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "UPLOAD_FAILED"})
				return
			}
			results = append(results, gin.H{
				"url":   "/uploads/" + name,
				"alt":   fh.Filename,
				"order": i,
			})
		}

		s.recordAudit(c, "upload", fmt.Sprintf("%d 件のファイルをアップロード", len(results)))

		c.JSON(http.StatusCreated, results)
	}
}
