//go:build windows

package platform

import (
	"errors"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/vitalis-app/hostenum/internal/cursor"
	"github.com/vitalis-app/hostenum/internal/errs"
	"github.com/vitalis-app/hostenum/internal/models"
)

const (
	wbemFlagReturnImmediately = 0x10
	wbemFlagForwardOnly       = 0x20
)

// wmiSource walks an SWbemObjectSet through IEnumVARIANT one object at a
// time.
type wmiSource struct {
	services *ole.VARIANT
	result   *ole.VARIANT
	enum     *ole.IEnumVARIANT
}

func (b *WindowsBackend) connect(namespace string) (*ole.VARIANT, error) {
	unknown, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return nil, errs.Backend("create SWbemLocator", err)
	}
	defer unknown.Release()

	locator, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, errs.Backend("query SWbemLocator", err)
	}
	defer locator.Release()

	services, err := oleutil.CallMethod(locator, "ConnectServer",
		b.server(), namespace, b.target.Username, b.target.Password)
	if err != nil {
		return nil, errs.Backend("ConnectServer "+namespace, err)
	}
	return services, nil
}

func (b *WindowsBackend) execQuery(namespace, statement string) (cursor.Source, error) {
	services, err := b.connect(namespace)
	if err != nil {
		return nil, err
	}

	result, err := oleutil.CallMethod(services.ToIDispatch(), "ExecQuery",
		statement, "WQL", wbemFlagForwardOnly|wbemFlagReturnImmediately)
	if err != nil {
		services.Clear()
		return nil, errs.Backend("ExecQuery", err)
	}

	enumProp, err := oleutil.GetProperty(result.ToIDispatch(), "_NewEnum")
	if err != nil {
		result.Clear()
		services.Clear()
		return nil, errs.Backend("_NewEnum", err)
	}
	defer enumProp.Clear()

	enum, err := enumProp.ToIUnknown().IEnumVARIANT(ole.IID_IEnumVariant)
	if err != nil || enum == nil {
		result.Clear()
		services.Clear()
		if err == nil {
			err = errors.New("nil IEnumVARIANT")
		}
		return nil, errs.Backend("IEnumVARIANT", err)
	}

	b.logger.Sugar().Debugf("WQL %s: %s", namespace, statement)
	return &wmiSource{services: services, result: result, enum: enum}, nil
}

// Next fetches exactly one object. IEnumVARIANT reports S_FALSE together
// with zero objects at the end of the set.
func (s *wmiSource) Next() (cursor.Record, error) {
	item, fetched, err := s.enum.Next(1)
	if fetched == 0 {
		var oleErr *ole.OleError
		if err == nil || (errors.As(err, &oleErr) && oleErr.Code() == sFalse) {
			return nil, nil
		}
		return nil, errs.Backend("IEnumVARIANT.Next", err)
	}
	if err != nil {
		item.Clear()
		return nil, errs.Backend("IEnumVARIANT.Next", err)
	}
	return &wmiRecord{item: item.ToIDispatch()}, nil
}

func (s *wmiSource) Close() error {
	s.enum.Release()
	s.result.Clear()
	s.services.Clear()
	return nil
}

type wmiRecord struct {
	item *ole.IDispatch
}

func (r *wmiRecord) Get(field string) (models.Value, error) {
	prop, err := oleutil.GetProperty(r.item, field)
	if err != nil {
		return models.Value{}, errs.Backend("get property "+field, err)
	}
	defer prop.Clear()

	return variantValue(prop)
}

func (r *wmiRecord) Release() {
	r.item.Release()
}

// variantValue copies a VARIANT into a cell. Arrays become multi-string
// cells; unsupported variant types are decode failures.
func variantValue(v *ole.VARIANT) (models.Value, error) {
	if v.VT&ole.VT_ARRAY != 0 {
		arr := v.ToArray()
		if arr == nil {
			return models.Null(), nil
		}
		return models.ValueOf(arr.ToValueArray())
	}
	return models.ValueOf(v.Value())
}
