package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/xaionaro-go/nsaphutils/pkg/interpolation/types"
)

var (
	interpolatorFactoryRegistry       = map[types.Method]types.Factory{}
	interpolatorFactoryRegistryLocker sync.Mutex
)

// RegisterInterpolatorFactory makes a strategy available under the
// given method. It is supposed to be called from an init() function;
// registering the same method twice panics.
func RegisterInterpolatorFactory(
	method types.Method,
	factory types.Factory,
) {
	if method == types.MethodUndefined || method >= types.EndOfMethod {
		panic(fmt.Errorf("cannot register a factory for method %v", method))
	}

	interpolatorFactoryRegistryLocker.Lock()
	defer interpolatorFactoryRegistryLocker.Unlock()
	if old, ok := interpolatorFactoryRegistry[method]; ok {
		panic(fmt.Errorf("there is already registered a factory %T of method %v", old, method))
	}
	interpolatorFactoryRegistry[method] = factory
}

// InterpolatorFactory returns the factory registered for the method.
func InterpolatorFactory(method types.Method) (types.Factory, bool) {
	interpolatorFactoryRegistryLocker.Lock()
	defer interpolatorFactoryRegistryLocker.Unlock()
	factory, ok := interpolatorFactoryRegistry[method]
	return factory, ok
}

// RegisteredMethods returns every method that has a factory, in
// ascending order.
func RegisteredMethods() []types.Method {
	interpolatorFactoryRegistryLocker.Lock()
	defer interpolatorFactoryRegistryLocker.Unlock()

	methods := make([]types.Method, 0, len(interpolatorFactoryRegistry))
	for method := range interpolatorFactoryRegistry {
		methods = append(methods, method)
	}
	sort.Slice(methods, func(i, j int) bool {
		return methods[i] < methods[j]
	})
	return methods
}

func unregisterInterpolatorFactory(method types.Method) {
	interpolatorFactoryRegistryLocker.Lock()
	defer interpolatorFactoryRegistryLocker.Unlock()
	delete(interpolatorFactoryRegistry, method)
}
