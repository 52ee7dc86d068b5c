// Package menu отдает статический документ меню из файла
package menu

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"restaurant_service/internal/models"
)

const msgMenuMissing = "Menu file not found"

// FileReader читает меню из файла при каждом запросе, без кэширования
type FileReader struct {
	path string // Путь к JSON файлу меню
}

// NewFileReader создает читатель меню для указанного файла
func NewFileReader(path string) *FileReader {
	return &FileReader{path: path}
}

// Path возвращает путь к файлу меню
func (r *FileReader) Path() string {
	return r.path
}

// Read возвращает содержимое файла меню без изменений.
// Отсутствующий файл - ошибка "не найдено", невалидный JSON - ошибка разбора.
func (r *FileReader) Read() (json.RawMessage, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.NotFound(msgMenuMissing)
		}
		return nil, models.MalformedInput(fmt.Errorf("Ошибка чтения файла меню: %w", err))
	}

	if !json.Valid(data) {
		return nil, models.MalformedInput(fmt.Errorf("Ошибка разбора файла меню %s: invalid JSON", r.path))
	}

	return json.RawMessage(data), nil
}
