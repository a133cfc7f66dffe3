package qr

import (
	"encoding/base64"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	qrcode "github.com/skip2/go-qrcode"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const size = 256

// Payload 扫码后得到的内容
type Payload struct {
	ID           string `json:"id"`
	SerialNumber string `json:"serialNumber"`
	Name         string `json:"name"`
}

func PNG(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	return png, nil
}

// DataURL 前端直接放进 <img src>
func DataURL(p Payload) (string, error) {
	png, err := PNG(p)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
