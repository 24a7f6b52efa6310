package ecs

import "reflect"

// typeOf 返回类型参数 T 对应的 reflect.Type
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// GetComponent 泛型版本的组件获取
//
// 用法：
//
//	frag, ok := ecs.GetComponent[*components.FragmentComponent](em, id)
func GetComponent[T any](em *EntityManager, id EntityID) (T, bool) {
	var zero T
	comp, found := em.GetComponent(id, typeOf[T]())
	if !found {
		return zero, false
	}
	typed, ok := comp.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// HasComponent 泛型版本的组件检查
func HasComponent[T any](em *EntityManager, id EntityID) bool {
	return em.HasComponent(id, typeOf[T]())
}

// GetEntitiesWith1 查询拥有组件 T1 的所有实体
func GetEntitiesWith1[T1 any](em *EntityManager) []EntityID {
	return em.GetEntitiesWith(typeOf[T1]())
}

// GetEntitiesWith2 查询同时拥有组件 T1、T2 的所有实体
func GetEntitiesWith2[T1, T2 any](em *EntityManager) []EntityID {
	return em.GetEntitiesWith(typeOf[T1](), typeOf[T2]())
}
