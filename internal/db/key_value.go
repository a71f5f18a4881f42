package db

import "gorm.io/gorm"

// KeyValue 以键值对形式保存整块序列化数据（例如药品列表与服药记录）。
type KeyValue struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (KeyValue) TableName() string {
	return "key_values"
}

const (
	// BlobKeyMedications 存放药品列表快照。
	BlobKeyMedications = "medications"
	// BlobKeyIntakeRecords 存放服药记录快照。
	BlobKeyIntakeRecords = "intakeRecords"
)
