package utils

import (
	"reflect"
	"time"

	"github.com/rahim5123rk-sys/trade-flow-app-sub000/config"
)

const listCacheExpiry = 10 * time.Minute

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

// cache list, TypeList:$company_id
func StoreRedisList[T any](list []*T, companyId string) error {
	var key string = GetTypeName[T]() + "List:" + companyId
	return config.SetRedisObject(key, list, listCacheExpiry)
}

// read cached list, TypeList:$company_id (nil when absent)
func RetrieveRedisList[T any](companyId string) ([]*T, error) {
	var key string = GetTypeName[T]() + "List:" + companyId
	var result []*T
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// clear list, TypeList:$company_id
func RemoveRedisList[T any](companyId string) error {
	var key string = GetTypeName[T]() + "List:" + companyId
	return config.RemoveRedisKey(key)
}
