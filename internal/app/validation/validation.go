package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"backend/internal/app/ds"
	"backend/internal/app/dto"
)

// Пакет разбирает недоверенный payload создания заявки в типизированную
// структуру одного из четырёх видов. Ошибки не прерывают разбор: собираются
// все нарушения сразу (путь поля + причина), чтобы клиент мог исправить
// форму за один заход.

// ParsedRequest — результат успешной валидации payload
type ParsedRequest struct {
	Request      ds.WorkRequest
	Lots         []ds.RequestLot
	SamplingLots []ds.RequestSamplingLot
}

// collector накапливает нарушения схемы
type collector struct {
	issues []dto.ValidationIssue
}

func (c *collector) add(field, message string) {
	c.issues = append(c.issues, dto.ValidationIssue{Field: field, Message: message})
}

// Допустимые форматы дат во входном payload
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseCreatePayload валидирует payload создания заявки.
// При пустом списке issues возвращается полностью заполненный ParsedRequest.
func ParseCreatePayload(payload map[string]interface{}) (*ParsedRequest, []dto.ValidationIssue) {
	c := &collector{}
	parsed := &ParsedRequest{}
	req := &parsed.Request

	kind, _ := payload["kind"].(string)
	if !ds.ValidKind(kind) {
		c.add("kind", "неизвестный вид заявки")
	}
	req.Kind = kind

	req.Requester = requiredString(payload, "requester", "requester", c)

	priority := requiredString(payload, "priority", "priority", c)
	if priority != "" && !ds.ValidPriority(priority) {
		c.add("priority", "приоритет должен быть одним из: P1, P2, P3")
	}
	req.Priority = priority

	if t, ok := requiredDate(payload, "requestDate", c); ok {
		req.RequestDate = t
	}

	// Опциональные описательные поля: отсутствие допустимо, пустая строка — нет
	req.Facility = optionalString(payload, "facility", "facility", c)
	req.Receiver = optionalString(payload, "receiver", "receiver", c)
	req.Location = optionalString(payload, "location", "location", c)
	req.AttnTo = optionalString(payload, "attnTo", "attnTo", c)
	req.ShippingAddress = optionalString(payload, "shippingAddress", "shippingAddress", c)
	req.Returnable = optionalBool(payload, "returnable", c)
	req.International = optionalBool(payload, "international", c)
	req.RefNumber = refNumber(payload, c)

	switch kind {
	case ds.KindLotTransfer, ds.KindShipment, ds.KindScrap:
		parsed.Lots = parseLots(payload, c)
	case ds.KindSampling:
		parseSamplingFields(payload, req, c)
		parsed.SamplingLots = parseSamplingLots(payload, c)
	}

	if len(c.issues) > 0 {
		return nil, c.issues
	}
	return parsed, nil
}

// refNumber принимает каноническое имя refNumber и алиас referenceNo,
// встречающийся на одном из путей интейка
func refNumber(payload map[string]interface{}, c *collector) *string {
	if _, ok := payload["refNumber"]; ok {
		return optionalString(payload, "refNumber", "refNumber", c)
	}
	if _, ok := payload["referenceNo"]; ok {
		return optionalString(payload, "referenceNo", "referenceNo", c)
	}
	return nil
}

func parseSamplingFields(payload map[string]interface{}, req *ds.WorkRequest, c *collector) {
	if s := requiredString(payload, "samplingType", "samplingType", c); s != "" {
		req.SamplingType = &s
	}
	if s := requiredString(payload, "projectName", "projectName", c); s != "" {
		req.ProjectName = &s
	}

	t, ok := requiredDate(payload, "qualReleaseDate", c)
	if !ok {
		return
	}
	// Сравнение с точностью до дня: release date сегодня — допустим,
	// строго раньше сегодняшнего дня — нарушение схемы
	if dayOf(t).Before(dayOf(time.Now())) {
		c.add("qualReleaseDate", "дата quality release не может быть раньше текущего дня")
		return
	}
	req.QualReleaseDate = &t
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func parseLots(payload map[string]interface{}, c *collector) []ds.RequestLot {
	items, ok := lineItems(payload, "lots", c)
	if !ok {
		return nil
	}

	lots := make([]ds.RequestLot, 0, len(items))
	for i, raw := range items {
		path := fmt.Sprintf("lots[%d]", i)
		item, ok := raw.(map[string]interface{})
		if !ok {
			c.add(path, "элемент должен быть объектом")
			continue
		}

		lot := ds.RequestLot{}
		lot.LotID = requiredString(item, "lotId", path+".lotId", c)
		lot.SerialNumber = optionalString(item, "serialNumber", path+".serialNumber", c)

		if v, present := item["unitsQuantity"]; present && v != nil {
			q, ok := coerceInt(v)
			if !ok {
				c.add(path+".unitsQuantity", "количество должно быть целым числом")
			} else if q < 0 {
				c.add(path+".unitsQuantity", "количество не может быть отрицательным")
			} else {
				lot.UnitsQuantity = &q
			}
		}

		lots = append(lots, lot)
	}
	return lots
}

func parseSamplingLots(payload map[string]interface{}, c *collector) []ds.RequestSamplingLot {
	items, ok := lineItems(payload, "samplingLots", c)
	if !ok {
		return nil
	}

	lots := make([]ds.RequestSamplingLot, 0, len(items))
	for i, raw := range items {
		path := fmt.Sprintf("samplingLots[%d]", i)
		item, ok := raw.(map[string]interface{})
		if !ok {
			c.add(path, "элемент должен быть объектом")
			continue
		}

		lot := ds.RequestSamplingLot{}
		lot.LotID = requiredString(item, "lotId", path+".lotId", c)
		lot.ReliabilityTest = requiredString(item, "reliabilityTest", path+".reliabilityTest", c)
		lot.TestCondition = requiredString(item, "testCondition", path+".testCondition", c)
		lot.AttributeTo = requiredString(item, "attributeTo", path+".attributeTo", c)

		v, present := item["unitsQuantity"]
		if !present || v == nil {
			c.add(path+".unitsQuantity", "обязательное поле")
		} else if q, ok := coerceInt(v); !ok {
			c.add(path+".unitsQuantity", "количество должно быть целым числом")
		} else if q <= 0 {
			c.add(path+".unitsQuantity", "количество должно быть строго положительным")
		} else {
			lot.UnitsQuantity = q
		}

		lots = append(lots, lot)
	}
	return lots
}

// lineItems достаёт массив элементов заявки, пустой список — нарушение
func lineItems(payload map[string]interface{}, key string, c *collector) ([]interface{}, bool) {
	v, present := payload[key]
	if !present || v == nil {
		c.add(key, "требуется хотя бы один элемент")
		return nil, false
	}
	items, ok := v.([]interface{})
	if !ok {
		c.add(key, "поле должно быть массивом")
		return nil, false
	}
	if len(items) == 0 {
		c.add(key, "требуется хотя бы один элемент")
		return nil, false
	}
	return items, true
}

// requiredString: key — имя поля в payload, field — полный путь для issue
func requiredString(m map[string]interface{}, key, field string, c *collector) string {
	v, present := m[key]
	if !present || v == nil {
		c.add(field, "обязательное поле")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		c.add(field, "поле должно быть строкой")
		return ""
	}
	if strings.TrimSpace(s) == "" {
		c.add(field, "поле не может быть пустым")
		return ""
	}
	return s
}

func optionalString(m map[string]interface{}, key, field string, c *collector) *string {
	v, present := m[key]
	if !present || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		c.add(field, "поле должно быть строкой")
		return nil
	}
	if strings.TrimSpace(s) == "" {
		c.add(field, "поле не может быть пустой строкой")
		return nil
	}
	return &s
}

func optionalBool(m map[string]interface{}, key string, c *collector) *bool {
	v, present := m[key]
	if !present || v == nil {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		c.add(key, "поле должно быть логическим")
		return nil
	}
	return &b
}

func requiredDate(m map[string]interface{}, key string, c *collector) (time.Time, bool) {
	v, present := m[key]
	if !present || v == nil {
		c.add(key, "обязательное поле")
		return time.Time{}, false
	}
	t, ok := coerceTime(v)
	if !ok {
		c.add(key, "значение не распознано как дата")
		return time.Time{}, false
	}
	return t, true
}

// coerceTime принимает дату строкой в одном из поддерживаемых форматов
func coerceTime(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// coerceInt нормализует числовой или строково-числовой ввод в int
func coerceInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}
